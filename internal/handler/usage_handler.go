package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chainfly/internal/service"
)

// UsageHandler handles meter reading endpoints.
type UsageHandler struct {
	usageService service.UsageService
	log          *zap.Logger
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(usageService service.UsageService, log *zap.Logger) *UsageHandler {
	return &UsageHandler{usageService: usageService, log: log}
}

// Record handles POST /api/v1/contracts/:id/usage
func (h *UsageHandler) Record(c *gin.Context) {
	contractID, ok := parseUUIDParam(c, "id", "contract")
	if !ok {
		return
	}

	var input service.UsageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	reading, err := h.usageService.Record(c.Request.Context(), contractID, &input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondCreated(c, reading)
}

// List handles GET /api/v1/contracts/:id/usage
func (h *UsageHandler) List(c *gin.Context) {
	contractID, ok := parseUUIDParam(c, "id", "contract")
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	readings, total, err := h.usageService.ListByContract(c.Request.Context(), contractID, offset, limit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondPaginated(c, readings, PagMeta{Total: total, Offset: offset, Limit: limit})
}
