package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chainfly/internal/domain"
	"chainfly/internal/service"
)

// TariffHandler handles dynamic tariff endpoints.
type TariffHandler struct {
	tariffService service.TariffService
	log           *zap.Logger
}

// NewTariffHandler creates a new TariffHandler.
func NewTariffHandler(tariffService service.TariffService, log *zap.Logger) *TariffHandler {
	return &TariffHandler{tariffService: tariffService, log: log}
}

// Resolve handles POST /api/v1/tariffs/resolve
func (h *TariffHandler) Resolve(c *gin.Context) {
	var req domain.TariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	resolution, err := h.tariffService.Resolve(c.Request.Context(), req)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, resolution)
}

// RecordOverride handles POST /api/v1/tariffs/overrides
func (h *TariffHandler) RecordOverride(c *gin.Context) {
	var input service.OverrideInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	structure, err := h.tariffService.RecordOverride(c.Request.Context(), &input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondCreated(c, structure)
}
