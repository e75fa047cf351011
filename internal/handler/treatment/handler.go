package treatment

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/access"
	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/treatment"
)

type Handler struct {
	svc treatment.TreatmentServicer
}

func NewHandler(svc treatment.TreatmentServicer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware) {
	treatments := r.Group("/treatments", mw.Authenticate(), mw.RequirePermission(access.PermTreatmentsManage))
	{
		treatments.GET("", h.ListTreatments)
		treatments.POST("", h.RecordTreatment)
	}
}

func (h *Handler) ListTreatments(c *gin.Context) {
	list, err := h.svc.ListForDoctor(c.Request.Context(), handler.CurrentUser(c).ID)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, list)
}

func (h *Handler) RecordTreatment(c *gin.Context) {
	var req model.RecordTreatmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBind(c, err)
		return
	}

	rec, err := h.svc.Record(c.Request.Context(), handler.CurrentUser(c), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Created(c, "Treatment recorded successfully", rec)
}
