package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/access"
	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/auth"
	"github.com/jwalitptl/hms-api/internal/service/user"
)

type Handler struct {
	svc   auth.AuthServicer
	users user.UserServicer
}

func NewHandler(svc auth.AuthServicer, users user.UserServicer) *Handler {
	return &Handler{svc: svc, users: users}
}

// RegisterRoutes mounts /auth. loginGuard runs in front of the login
// handler, typically a per-client rate limit.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware, loginGuard ...gin.HandlerFunc) {
	g := r.Group("/auth")
	{
		g.POST("/login", append(loginGuard, h.Login)...)

		authed := g.Group("", mw.Authenticate(), mw.RequirePermission(access.PermProfileManage))
		authed.POST("/logout", h.Logout)
		authed.GET("/me", h.Me)
		authed.PUT("/password", h.ChangePassword)
		authed.PUT("/profile", h.UpdateProfile)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBind(c, err)
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	handler.OK(c, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), handler.CurrentToken(c)); err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("logged out successfully", gin.H{"redirect": access.LoginPath}))
}

func (h *Handler) Me(c *gin.Context) {
	handler.OK(c, handler.CurrentUser(c))
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBind(c, err)
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), handler.CurrentUser(c).ID, &req); err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("Password changed successfully", nil))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBind(c, err)
		return
	}

	u, err := h.users.UpdateProfile(c.Request.Context(), handler.CurrentUser(c).ID, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("Profile updated successfully", u))
}
