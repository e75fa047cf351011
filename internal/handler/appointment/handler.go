package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/access"
	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/appointment"
)

type Handler struct {
	svc appointment.AppointmentServicer
}

func NewHandler(svc appointment.AppointmentServicer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware) {
	appointments := r.Group("/appointments", mw.Authenticate())
	{
		appointments.GET("", mw.RequirePermission(access.PermAppointmentsRead), h.ListAppointments)
		appointments.GET("/stats", mw.RequirePermission(access.PermAppointmentsStats), h.Stats)
		appointments.GET("/:id", mw.RequirePermission(access.PermAppointmentsRead), h.GetAppointment)
		appointments.POST("", mw.RequirePermission(access.PermAppointmentsCreate), h.CreateAppointment)
		appointments.PUT("/:id", mw.RequirePermission(access.PermAppointmentsManage), h.UpdateAppointment)
		appointments.POST("/:id/cancel", mw.RequirePermission(access.PermAppointmentsManage), h.CancelAppointment)
		appointments.POST("/:id/follow-up", mw.RequirePermission(access.PermFollowUpsSchedule), h.ScheduleFollowUp)
	}
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var filter model.AppointmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		handler.FailBind(c, err)
		return
	}

	appointments, err := h.svc.List(c.Request.Context(), handler.CurrentUser(c), filter)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, appointments)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), handler.CurrentUser(c))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, stats)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	a, err := h.svc.Get(c.Request.Context(), handler.CurrentUser(c), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, a)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBind(c, err)
		return
	}

	a, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Created(c, "Appointment scheduled", a)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBind(c, err)
		return
	}

	a, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse("Appointment updated", a))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	a, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse("Appointment cancelled", a))
}

func (h *Handler) ScheduleFollowUp(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	var req model.FollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBind(c, err)
		return
	}

	a, err := h.svc.ScheduleFollowUp(c.Request.Context(), handler.CurrentUser(c), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Created(c, "Follow-up scheduled", a)
}
