package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chainfly/internal/domain"
	"chainfly/internal/handler"
	"chainfly/internal/middleware"
	"chainfly/internal/service"
)

// Handlers groups every HTTP handler mounted by Setup.
type Handlers struct {
	Health   *handler.HealthHandler
	Customer *handler.CustomerHandler
	Contract *handler.ContractHandler
	Usage    *handler.UsageHandler
	Invoice  *handler.InvoiceHandler
	Tariff   *handler.TariffHandler
	Payment  *handler.PaymentHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(authSvc service.AuthService, h *Handlers, allowedOrigins []string, log *zap.Logger) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(authSvc))

	writers := middleware.RequireRole(domain.RoleAdmin, domain.RoleOperator)
	admins := middleware.RequireRole(domain.RoleAdmin)

	customers := v1.Group("/customers")
	customers.POST("", writers, h.Customer.Create)
	customers.GET("", h.Customer.List)
	customers.GET("/:id", h.Customer.GetByID)
	customers.GET("/:id/contracts", h.Customer.ListContracts)

	contracts := v1.Group("/contracts")
	contracts.POST("", writers, h.Contract.Create)
	contracts.GET("/:id", h.Contract.GetByID)
	contracts.GET("/:id/document", h.Contract.Document)
	contracts.POST("/:id/sign", writers, h.Contract.Sign)
	contracts.POST("/:id/terminate", admins, h.Contract.Terminate)

	contracts.POST("/:id/usage", writers, h.Usage.Record)
	contracts.GET("/:id/usage", h.Usage.List)

	contracts.POST("/:id/invoices", writers, h.Invoice.Generate)
	contracts.GET("/:id/invoices", h.Invoice.List)
	contracts.GET("/:id/invoices/:invoiceId", h.Invoice.GetByID)
	contracts.POST("/:id/invoices/:invoiceId/pay", writers, h.Invoice.Pay)
	contracts.GET("/:id/invoices/:invoiceId/document", h.Invoice.Document)
	contracts.GET("/:id/statement", h.Invoice.Statement)

	contracts.GET("/:id/payment-schedule", h.Payment.Schedule)
	contracts.POST("/:id/payments", writers, h.Payment.Record)
	contracts.GET("/:id/payments", h.Payment.List)

	tariffs := v1.Group("/tariffs")
	tariffs.POST("/resolve", h.Tariff.Resolve)
	tariffs.POST("/overrides", admins, h.Tariff.RecordOverride)

	return r
}
