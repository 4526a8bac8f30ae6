package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"chainfly/internal/billing"
	"chainfly/internal/domain"
	"chainfly/internal/handler"
	"chainfly/internal/service"
	"chainfly/mocks"
)

func newContractHandler() (*handler.ContractHandler, *mocks.MockContractService) {
	mockSvc := new(mocks.MockContractService)
	return handler.NewContractHandler(mockSvc, zap.NewNop()), mockSvc
}

func TestContractHandler_Create_Success(t *testing.T) {
	h, mockSvc := newContractHandler()
	customerID := uuid.New()
	created := &domain.Contract{ID: uuid.New(), CustomerID: customerID, Status: domain.ContractStatusActive}

	mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(terms *billing.Terms) bool {
		return terms.CustomerID == customerID && terms.BillingCycle == domain.BillingCycleMonthly
	})).Return(created, nil)

	body := map[string]interface{}{
		"customer_id":    customerID,
		"billing_cycle":  "monthly",
		"business_model": "opex",
		"start_date":     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"end_date":       time.Date(2034, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	c, w := newTestContext(t, http.MethodPost, "/api/v1/contracts", body)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
	mockSvc.AssertExpectations(t)
}

func TestContractHandler_Create_MalformedBody(t *testing.T) {
	h, mockSvc := newContractHandler()
	c, w := newTestContext(t, http.MethodPost, "/api/v1/contracts", "not-an-object")

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestContractHandler_Create_Overlap(t *testing.T) {
	h, mockSvc := newContractHandler()
	mockSvc.On("Create", mock.Anything, mock.Anything).
		Return(nil, &domain.OverlapError{ConflictingContractID: uuid.New()})

	c, w := newTestContext(t, http.MethodPost, "/api/v1/contracts", map[string]string{"billing_cycle": "monthly"})

	h.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PPA_OVERLAP", decodeResponse(t, w).Error.Code)
}

func TestContractHandler_GetByID_InvalidID(t *testing.T) {
	h, _ := newContractHandler()
	c, w := newTestContext(t, http.MethodGet, "/api/v1/contracts/abc", nil, "id", "abc")

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decodeResponse(t, w).Error.Code)
}

func TestContractHandler_Sign(t *testing.T) {
	h, mockSvc := newContractHandler()
	id := uuid.New()
	signedAt := time.Now()
	mockSvc.On("Sign", mock.Anything, id).
		Return(&domain.Contract{ID: id, Status: domain.ContractStatusActive, SignedAt: &signedAt}, nil)

	c, w := newTestContext(t, http.MethodPost, "/api/v1/contracts/"+id.String()+"/sign", nil, "id", id.String())

	h.Sign(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestContractHandler_Terminate_InvalidTransition(t *testing.T) {
	h, mockSvc := newContractHandler()
	id := uuid.New()
	mockSvc.On("Terminate", mock.Anything, id).Return(nil, domain.ErrInvalidStatusTransition)

	c, w := newTestContext(t, http.MethodPost, "/api/v1/contracts/"+id.String()+"/terminate", nil, "id", id.String())

	h.Terminate(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", decodeResponse(t, w).Error.Code)
}

func TestContractHandler_Document(t *testing.T) {
	h, mockSvc := newContractHandler()
	id := uuid.New()
	mockSvc.On("Document", mock.Anything, id).Return(&service.ContractDocument{
		ContractID: id,
		URL:        "https://bucket.s3.amazonaws.com/contracts/agreement.xlsx?sig",
	}, nil)

	c, w := newTestContext(t, http.MethodGet, "/", nil, "id", id.String())

	h.Document(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "agreement.xlsx")
}

func TestContractHandler_Document_NotFound(t *testing.T) {
	h, mockSvc := newContractHandler()
	id := uuid.New()
	mockSvc.On("Document", mock.Anything, id).Return(nil, domain.NewNotFoundError("contract", id))

	c, w := newTestContext(t, http.MethodGet, "/", nil, "id", id.String())

	h.Document(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
