package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/access"
	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/payment"
)

type Handler struct {
	svc payment.PaymentServicer
}

func NewHandler(svc payment.PaymentServicer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware) {
	payments := r.Group("/payments", mw.Authenticate(), mw.RequirePermission(access.PermPaymentsManage))
	{
		payments.GET("", h.ListPayments)
		payments.POST("", h.RecordPayment)
		payments.GET("/summary", h.Summary)
		payments.GET("/:id", h.GetPayment)
		payments.POST("/:id/confirm", h.ConfirmPayment)
	}
}

func (h *Handler) ListPayments(c *gin.Context) {
	var filter model.PaymentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		handler.FailBind(c, err)
		return
	}

	payments, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, payments)
}

func (h *Handler) RecordPayment(c *gin.Context) {
	var req model.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBind(c, err)
		return
	}

	p, err := h.svc.Record(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Created(c, "Payment recorded", p)
}

func (h *Handler) GetPayment(c *gin.Context) {
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

func (h *Handler) ConfirmPayment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	var req model.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.FailBind(c, err)
		return
	}

	p, err := h.svc.Confirm(c.Request.Context(), id, *req.Success)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse("Payment "+string(p.Status), p))
}

func (h *Handler) Summary(c *gin.Context) {
	sum, err := h.svc.Summary(c.Request.Context(), c.Query("date"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.OK(c, sum)
}
