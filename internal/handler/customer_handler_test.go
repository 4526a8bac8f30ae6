package handler_test

import (
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

func newCustomerHandler() (*handler.CustomerHandler, *mocks.MockCustomerService, *mocks.MockContractService) {
	customerSvc := new(mocks.MockCustomerService)
	contractSvc := new(mocks.MockContractService)
	return handler.NewCustomerHandler(customerSvc, contractSvc, zap.NewNop()), customerSvc, contractSvc
}

func TestCustomerHandler_Create(t *testing.T) {
	h, customerSvc, _ := newCustomerHandler()
	customerSvc.On("Create", mock.Anything, mock.MatchedBy(func(in *service.CreateCustomerInput) bool {
		return in.Email == "plant@acme.in"
	})).Return(&domain.Customer{ID: uuid.New(), Name: "Acme Foods", Email: "plant@acme.in"}, nil)

	body := map[string]string{"name": "Acme Foods", "email": "plant@acme.in", "state": "Maharashtra"}
	c, w := newTestContext(t, http.MethodPost, "/api/v1/customers", body)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	customerSvc.AssertExpectations(t)
}

func TestCustomerHandler_Create_InvalidEmail(t *testing.T) {
	h, customerSvc, _ := newCustomerHandler()
	c, w := newTestContext(t, http.MethodPost, "/api/v1/customers", map[string]string{"name": "Acme", "email": "nope"})

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	customerSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCustomerHandler_GetByID_NotFound(t *testing.T) {
	h, customerSvc, _ := newCustomerHandler()
	id := uuid.New()
	customerSvc.On("Get", mock.Anything, id).Return(nil, domain.NewNotFoundError("customer", id))

	c, w := newTestContext(t, http.MethodGet, "/", nil, "id", id.String())

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCustomerHandler_ListContracts(t *testing.T) {
	h, _, contractSvc := newCustomerHandler()
	id := uuid.New()
	contractSvc.On("ListByCustomer", mock.Anything, id, 10, 5).
		Return([]domain.Contract{{ID: uuid.New(), CustomerID: id}}, 11, nil)

	c, w := newTestContext(t, http.MethodGet, "/?offset=10&limit=5", nil, "id", id.String())

	h.ListContracts(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, 11, resp.Meta.Total)
	assert.Equal(t, 10, resp.Meta.Offset)
	contractSvc.AssertExpectations(t)
}

func TestCustomerHandler_List(t *testing.T) {
	h, customerSvc, _ := newCustomerHandler()
	customerSvc.On("List", mock.Anything, 0, 20).
		Return([]domain.Customer{{ID: uuid.New(), Name: "Acme Foods"}, {ID: uuid.New(), Name: "Sunrise Textiles"}}, 2, nil)

	c, w := newTestContext(t, http.MethodGet, "/api/v1/customers", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, 2, resp.Meta.Total)
	assert.Equal(t, 20, resp.Meta.Limit)
	customerSvc.AssertExpectations(t)
}
