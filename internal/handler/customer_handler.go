package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chainfly/internal/service"
)

// CustomerHandler handles customer endpoints.
type CustomerHandler struct {
	customerService service.CustomerService
	contractService service.ContractService
	log             *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customerService service.CustomerService, contractService service.ContractService, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, contractService: contractService, log: log}
}

// Create handles POST /api/v1/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var input service.CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), &input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondCreated(c, customer)
}

// List handles GET /api/v1/customers
func (h *CustomerHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	customers, total, err := h.customerService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondPaginated(c, customers, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "customer")
	if !ok {
		return
	}

	customer, err := h.customerService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, customer)
}

// ListContracts handles GET /api/v1/customers/:id/contracts
func (h *CustomerHandler) ListContracts(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "customer")
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	contracts, total, err := h.contractService.ListByCustomer(c.Request.Context(), id, offset, limit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondPaginated(c, contracts, PagMeta{Total: total, Offset: offset, Limit: limit})
}
