package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"chainfly/internal/domain"
	"chainfly/internal/handler"
	"chainfly/internal/router"
	"chainfly/internal/service"
	"chainfly/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(authSvc *mocks.MockAuthService, contractSvc *mocks.MockContractService) *gin.Engine {
	log := zap.NewNop()
	h := &router.Handlers{
		Health:   handler.NewHealthHandler(nil),
		Customer: handler.NewCustomerHandler(new(mocks.MockCustomerService), contractSvc, log),
		Contract: handler.NewContractHandler(contractSvc, log),
		Usage:    handler.NewUsageHandler(new(mocks.MockUsageService), log),
		Invoice:  handler.NewInvoiceHandler(new(mocks.MockInvoiceService), log),
		Tariff:   handler.NewTariffHandler(new(mocks.MockTariffService), log),
		Payment:  handler.NewPaymentHandler(new(mocks.MockPaymentService), log),
	}
	return router.Setup(authSvc, h, []string{"http://localhost:3000"}, log)
}

func claimsWithRole(role domain.Role) *service.Claims {
	return &service.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}, Role: role}
}

func TestRouter_Liveness_NoAuth(t *testing.T) {
	r := setup(new(mocks.MockAuthService), new(mocks.MockContractService))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_RequiresBearer(t *testing.T) {
	r := setup(new(mocks.MockAuthService), new(mocks.MockContractService))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/contracts/"+uuid.NewString(), http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_ViewerCannotTerminate(t *testing.T) {
	authSvc := new(mocks.MockAuthService)
	authSvc.On("ValidateToken", "viewer-token").Return(claimsWithRole(domain.RoleViewer), nil)
	contractSvc := new(mocks.MockContractService)
	r := setup(authSvc, contractSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/contracts/"+uuid.NewString()+"/terminate", http.NoBody)
	req.Header.Set("Authorization", "Bearer viewer-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	contractSvc.AssertNotCalled(t, "Terminate", mock.Anything, mock.Anything)
}

func TestRouter_ViewerCanRead(t *testing.T) {
	authSvc := new(mocks.MockAuthService)
	authSvc.On("ValidateToken", "viewer-token").Return(claimsWithRole(domain.RoleViewer), nil)
	contractSvc := new(mocks.MockContractService)
	id := uuid.New()
	contractSvc.On("Get", mock.Anything, id).Return(&domain.Contract{ID: id, Status: domain.ContractStatusActive}, nil)
	r := setup(authSvc, contractSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/contracts/"+id.String(), http.NoBody)
	req.Header.Set("Authorization", "Bearer viewer-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	contractSvc.AssertExpectations(t)
}

func TestRouter_ContractDocument(t *testing.T) {
	authSvc := new(mocks.MockAuthService)
	authSvc.On("ValidateToken", "viewer-token").Return(claimsWithRole(domain.RoleViewer), nil)
	contractSvc := new(mocks.MockContractService)
	id := uuid.New()
	contractSvc.On("Document", mock.Anything, id).Return(&service.ContractDocument{ContractID: id, URL: "https://signed.example/ppa"}, nil)
	r := setup(authSvc, contractSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/contracts/"+id.String()+"/document", http.NoBody)
	req.Header.Set("Authorization", "Bearer viewer-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	contractSvc.AssertExpectations(t)
}
