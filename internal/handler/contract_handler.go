package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chainfly/internal/billing"
	"chainfly/internal/service"
)

// ContractHandler handles PPA contract lifecycle endpoints.
type ContractHandler struct {
	contractService service.ContractService
	log             *zap.Logger
}

// NewContractHandler creates a new ContractHandler.
func NewContractHandler(contractService service.ContractService, log *zap.Logger) *ContractHandler {
	return &ContractHandler{contractService: contractService, log: log}
}

// Create handles POST /api/v1/contracts
// Terms are validated by the service; binding only decodes the body.
func (h *ContractHandler) Create(c *gin.Context) {
	var terms billing.Terms
	if err := c.ShouldBindJSON(&terms); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	contract, err := h.contractService.Create(c.Request.Context(), &terms)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondCreated(c, contract)
}

// GetByID handles GET /api/v1/contracts/:id
func (h *ContractHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "contract")
	if !ok {
		return
	}

	contract, err := h.contractService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, contract)
}

// Sign handles POST /api/v1/contracts/:id/sign
func (h *ContractHandler) Sign(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "contract")
	if !ok {
		return
	}

	contract, err := h.contractService.Sign(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, contract)
}

// Terminate handles POST /api/v1/contracts/:id/terminate
func (h *ContractHandler) Terminate(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "contract")
	if !ok {
		return
	}

	contract, err := h.contractService.Terminate(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, contract)
}

// Document handles GET /api/v1/contracts/:id/document
func (h *ContractHandler) Document(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "contract")
	if !ok {
		return
	}

	doc, err := h.contractService.Document(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, doc)
}
