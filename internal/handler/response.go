package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chainfly/internal/domain"
	"chainfly/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrPaymentMismatch):
		return http.StatusUnprocessableEntity, "PAYMENT_MISMATCH", "payment amount does not match the expected breakdown"
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Error()
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR", "validation failed"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrPPAOverlap):
		return http.StatusConflict, "PPA_OVERLAP", "contract window overlaps an existing contract for this customer"
	case errors.Is(err, domain.ErrContractNotActive):
		return http.StatusConflict, "CONTRACT_NOT_ACTIVE", "contract is not active"
	case errors.Is(err, domain.ErrDuplicateBillingPeriod):
		return http.StatusConflict, "DUPLICATE_BILLING_PERIOD", "an invoice already exists for this billing period"
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		return http.StatusConflict, "INVALID_STATUS_TRANSITION", "contract status does not allow this operation"
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return http.StatusConflict, "CONCURRENT_UPDATE", "contract was modified concurrently; retry the request"
	case errors.Is(err, domain.ErrTariffUnresolvable):
		return http.StatusServiceUnavailable, "TARIFF_UNRESOLVABLE", "no tariff source produced a rate"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// errorDetails returns structured fields for errors that carry them.
func errorDetails(err error) map[string]string {
	var overlapErr *domain.OverlapError
	if errors.As(err, &overlapErr) {
		return map[string]string{"conflicting_contract_id": overlapErr.ConflictingContractID.String()}
	}
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return map[string]string{"field": validationErr.Field}
	}
	return nil
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, log *zap.Logger, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Error("request failed",
			zap.String("request_id", c.GetString(middleware.ContextKeyRequestID)),
			zap.String("code", code),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg, Details: errorDetails(err)},
	})
}

func parseUUIDParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
