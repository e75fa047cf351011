package dashboard

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/access"
	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/service/dashboard"
)

type Handler struct {
	svc dashboard.DashboardServicer
}

func NewHandler(svc dashboard.DashboardServicer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware) {
	r.GET("/dashboard", mw.Authenticate(), mw.RequirePermission(access.PermDashboardView), h.GetDashboard)
}

func (h *Handler) GetDashboard(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), handler.CurrentUser(c))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, d)
}
