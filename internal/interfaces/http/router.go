package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/onda-rd/backoffice-api/internal/application/auth"
	"github.com/onda-rd/backoffice-api/internal/application/billing"
	"github.com/onda-rd/backoffice-api/internal/application/caja"
	"github.com/onda-rd/backoffice-api/internal/application/events"
	"github.com/onda-rd/backoffice-api/internal/application/fiscal"
	"github.com/onda-rd/backoffice-api/internal/application/inspeccion"
	"github.com/onda-rd/backoffice-api/internal/application/registro"
	"github.com/onda-rd/backoffice-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	FiscalUC     *fiscal.AllocatorUseCase
	LedgerUC     *billing.LedgerUseCase
	CajaUC       *caja.UseCase
	RegistroUC   *registro.WorkflowUseCase
	InspeccionUC *inspeccion.WorkflowUseCase
	JWTSecret    string
	WebhookToken string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Webhooks (autenticados por token compartido, no por JWT)
	webhookHandler := NewWebhookHandler(deps.WebhookToken, deps.RegistroUC,
		[]events.Handler{deps.RegistroUC, deps.InspeccionUC}...)
	webhooks := api.Group("/webhooks", webhookHandler.CheckToken)
	webhooks.Post("/payment", webhookHandler.PaymentConfirmed)
	webhooks.Post("/signature", webhookHandler.SignatureConfirmed)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Secuencias NCF (solo admin)
	ncf := protected.Group("/ncf/sequences", RequireRole(entity.RoleAdmin))
	fiscalHandler := NewFiscalHandler(deps.FiscalUC)
	ncf.Post("/", fiscalHandler.CreateSequence)
	ncf.Get("/stats", fiscalHandler.Statistics)
	ncf.Post("/:id/deactivate", fiscalHandler.Deactivate)

	// Facturas
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.LedgerUC)
	invoices.Post("/", invoiceHandler.Open)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Post("/:id/pay", invoiceHandler.Pay)
	invoices.Post("/:id/void", invoiceHandler.Void)

	// Caja
	cajaGroup := protected.Group("/caja")
	cajaHandler := NewCajaHandler(deps.CajaUC)
	cajaGroup.Post("/open", cajaHandler.Open)
	cajaGroup.Post("/:id/close", cajaHandler.Close)
	cajaGroup.Get("/:id/report", cajaHandler.Report)

	// Solicitudes de registro IRC
	solicitudes := protected.Group("/solicitudes")
	solicitudHandler := NewSolicitudHandler(deps.RegistroUC)
	solicitudes.Post("/", solicitudHandler.Create)
	solicitudes.Get("/:id", solicitudHandler.GetByID)
	solicitudes.Get("/:id/progress", solicitudHandler.Progress)
	solicitudes.Post("/:id/iniciar-validacion", solicitudHandler.IniciarValidacion)
	solicitudes.Post("/:id/validar", solicitudHandler.Validar)
	solicitudes.Post("/:id/asentar", solicitudHandler.Asentar)
	solicitudes.Post("/:id/certificar", solicitudHandler.Certificar)
	solicitudes.Post("/:id/entregar", solicitudHandler.Entregar)

	// Expedientes de inspección
	casos := protected.Group("/casos")
	caseHandler := NewCaseHandler(deps.InspeccionUC)
	casos.Post("/", caseHandler.Create)
	casos.Get("/:id", caseHandler.GetByID)
	casos.Get("/:id/progress", caseHandler.Progress)
	casos.Post("/:id/asignar", caseHandler.Asignar)
	casos.Post("/:id/primera-visita", caseHandler.PrimeraVisita)
	casos.Post("/:id/segunda-visita", caseHandler.SegundaVisita)
	casos.Post("/:id/resolver", caseHandler.Resolver)
	casos.Post("/:id/cerrar", caseHandler.CerrarManual)
}
