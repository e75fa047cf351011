package access

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/access"
	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/middleware"
)

// Handler serves the navigation menu and view access decisions that the
// front end uses to guard its pages.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware) {
	r.GET("/navigation", mw.Authenticate(), mw.RequirePermission(access.PermNavigationView), h.Navigation)
	r.GET("/access", mw.OptionalAuthenticate(), h.Resolve)
}

func (h *Handler) Navigation(c *gin.Context) {
	handler.OK(c, access.Navigation(handler.CurrentUser(c).Role))
}

func (h *Handler) Resolve(c *gin.Context) {
	handler.OK(c, access.Resolve(c.Query("path"), handler.CurrentUser(c)))
}
