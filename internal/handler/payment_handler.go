package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chainfly/internal/service"
)

// PaymentHandler handles payment schedule and OPEX payment endpoints.
type PaymentHandler struct {
	paymentService service.PaymentService
	log            *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService service.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, log: log}
}

// Schedule handles GET /api/v1/contracts/:id/payment-schedule
func (h *PaymentHandler) Schedule(c *gin.Context) {
	contractID, ok := parseUUIDParam(c, "id", "contract")
	if !ok {
		return
	}

	schedule, err := h.paymentService.BuildSchedule(c.Request.Context(), contractID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, schedule)
}

// Record handles POST /api/v1/contracts/:id/payments
func (h *PaymentHandler) Record(c *gin.Context) {
	contractID, ok := parseUUIDParam(c, "id", "contract")
	if !ok {
		return
	}

	var input service.OpexPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	payment, err := h.paymentService.RecordOpexPayment(c.Request.Context(), contractID, &input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondCreated(c, payment)
}

// List handles GET /api/v1/contracts/:id/payments
func (h *PaymentHandler) List(c *gin.Context) {
	contractID, ok := parseUUIDParam(c, "id", "contract")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListByContract(c.Request.Context(), contractID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, payments)
}
