package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chainfly/internal/csvexport"
	"chainfly/internal/service"
)

// InvoiceHandler handles invoice generation, payment and statement endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	log            *zap.Logger
	now            func() time.Time
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, log: log, now: time.Now}
}

// Generate handles POST /api/v1/contracts/:id/invoices
func (h *InvoiceHandler) Generate(c *gin.Context) {
	contractID, ok := parseUUIDParam(c, "id", "contract")
	if !ok {
		return
	}

	var input service.UsageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	invoice, err := h.invoiceService.Generate(c.Request.Context(), contractID, &input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondCreated(c, invoice)
}

// List handles GET /api/v1/contracts/:id/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	contractID, ok := parseUUIDParam(c, "id", "contract")
	if !ok {
		return
	}

	invoices, err := h.invoiceService.ListByContract(c.Request.Context(), contractID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, invoices)
}

// GetByID handles GET /api/v1/contracts/:id/invoices/:invoiceId
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	contractID, ok := parseUUIDParam(c, "id", "contract")
	if !ok {
		return
	}
	invoiceID, ok := parseUUIDParam(c, "invoiceId", "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Get(c.Request.Context(), contractID, invoiceID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, invoice)
}

// Pay handles POST /api/v1/contracts/:id/invoices/:invoiceId/pay
func (h *InvoiceHandler) Pay(c *gin.Context) {
	contractID, ok := parseUUIDParam(c, "id", "contract")
	if !ok {
		return
	}
	invoiceID, ok := parseUUIDParam(c, "invoiceId", "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Pay(c.Request.Context(), contractID, invoiceID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, invoice)
}

// Document handles GET /api/v1/contracts/:id/invoices/:invoiceId/document
func (h *InvoiceHandler) Document(c *gin.Context) {
	contractID, ok := parseUUIDParam(c, "id", "contract")
	if !ok {
		return
	}
	invoiceID, ok := parseUUIDParam(c, "invoiceId", "invoice")
	if !ok {
		return
	}

	doc, err := h.invoiceService.Document(c.Request.Context(), contractID, invoiceID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, doc)
}

// Statement handles GET /api/v1/contracts/:id/statement
// It streams every invoice of the contract as a CSV file.
func (h *InvoiceHandler) Statement(c *gin.Context) {
	contractID, ok := parseUUIDParam(c, "id", "contract")
	if !ok {
		return
	}

	invoices, err := h.invoiceService.ListByContract(c.Request.Context(), contractID)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	filename := csvexport.BuildFilename(contractID.String(), h.now())
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		h.log.Warn("writing statement", zap.Error(err))
		return
	}
	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		h.log.Warn("writing statement header", zap.Error(err))
		return
	}
	if err := w.WriteInvoices(invoices); err != nil {
		h.log.Warn("writing statement rows", zap.Error(err))
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.log.Warn("flushing statement", zap.Stringer("contract_id", contractID), zap.Error(err))
	}
}
