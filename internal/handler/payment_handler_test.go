package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"chainfly/internal/domain"
	"chainfly/internal/handler"
	"chainfly/internal/service"
	"chainfly/mocks"
)

func newPaymentHandler() (*handler.PaymentHandler, *mocks.MockPaymentService) {
	mockSvc := new(mocks.MockPaymentService)
	return handler.NewPaymentHandler(mockSvc, zap.NewNop()), mockSvc
}

func TestPaymentHandler_Schedule(t *testing.T) {
	h, mockSvc := newPaymentHandler()
	contractID := uuid.New()
	mockSvc.On("BuildSchedule", mock.Anything, contractID).Return(&domain.PaymentSchedule{
		ContractID:    contractID,
		BusinessModel: domain.BusinessModelCapex,
		GrossAmount:   1000000,
		SubsidyAmount: 150000,
		NetAmount:     850000,
	}, nil)

	c, w := newTestContext(t, http.MethodGet, "/", nil, "id", contractID.String())

	h.Schedule(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"net_amount":850000`)
}

func TestPaymentHandler_Record_Success(t *testing.T) {
	h, mockSvc := newPaymentHandler()
	contractID := uuid.New()
	mockSvc.On("RecordOpexPayment", mock.Anything, contractID, mock.MatchedBy(func(in *service.OpexPaymentInput) bool {
		return in.Amount == 16200 && in.EnergyConsumedKWh == 1000
	})).Return(&domain.Payment{ID: uuid.New(), ContractID: contractID, Amount: 16200}, nil)

	body := map[string]interface{}{"amount": 16200, "energy_consumed_kwh": 1000}
	c, w := newTestContext(t, http.MethodPost, "/", body, "id", contractID.String())

	h.Record(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestPaymentHandler_Record_Mismatch(t *testing.T) {
	h, mockSvc := newPaymentHandler()
	contractID := uuid.New()
	mismatch := fmt.Errorf("%w: %w", domain.ErrPaymentMismatch, domain.NewValidationError("amount", "expected 16200.00, got 16000.00"))
	mockSvc.On("RecordOpexPayment", mock.Anything, contractID, mock.Anything).Return(nil, mismatch)

	body := map[string]interface{}{"amount": 16000, "energy_consumed_kwh": 1000}
	c, w := newTestContext(t, http.MethodPost, "/", body, "id", contractID.String())

	h.Record(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "PAYMENT_MISMATCH", resp.Error.Code)
	assert.Equal(t, "amount", resp.Error.Details["field"])
}

func TestPaymentHandler_Record_NonPositiveAmount(t *testing.T) {
	h, mockSvc := newPaymentHandler()
	contractID := uuid.New()
	c, w := newTestContext(t, http.MethodPost, "/", map[string]interface{}{"amount": -5}, "id", contractID.String())

	h.Record(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "RecordOpexPayment", mock.Anything, mock.Anything, mock.Anything)
}
