package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/access"
	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/patient"
)

type Handler struct {
	svc patient.PatientServicer
}

func NewHandler(svc patient.PatientServicer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware) {
	patients := r.Group("/patients", mw.Authenticate())
	{
		patients.GET("", mw.RequirePermission(access.PermPatientsRead), h.ListPatients)
		patients.GET("/:id", mw.RequirePermission(access.PermPatientsRead), h.GetPatient)
		patients.PUT("/:id", mw.RequirePermission(access.PermPatientsUpdate), h.UpdatePatient)
		patients.POST("", mw.RequirePermission(access.PermPatientsRegister), h.RegisterPatient)
	}

	queue := r.Group("/queue", mw.Authenticate())
	{
		queue.GET("", mw.RequirePermission(access.PermQueueRead), h.Queue)
		queue.PUT("/:id/seen", mw.RequirePermission(access.PermQueueUpdate), h.MarkSeen)
	}
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.svc.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, p)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBind(c, err)
		return
	}

	p, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse("Patient updated successfully", p))
}

// RegisterPatient collects the fee and registers the patient in one step.
func (h *Handler) RegisterPatient(c *gin.Context) {
	var req model.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBind(c, err)
		return
	}

	reg, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Created(c, "Patient registered successfully", reg)
}

func (h *Handler) Queue(c *gin.Context) {
	queue, err := h.svc.Queue(c.Request.Context(), c.Query("date"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, queue)
}

func (h *Handler) MarkSeen(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	p, err := h.svc.MarkSeen(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, p)
}
