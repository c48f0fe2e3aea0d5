package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/onda-rd/backoffice-api/internal/application/auth"
	"github.com/onda-rd/backoffice-api/internal/application/billing"
	"github.com/onda-rd/backoffice-api/internal/application/caja"
	"github.com/onda-rd/backoffice-api/internal/application/events"
	"github.com/onda-rd/backoffice-api/internal/application/fiscal"
	"github.com/onda-rd/backoffice-api/internal/application/inspeccion"
	"github.com/onda-rd/backoffice-api/internal/application/registro"
	"github.com/onda-rd/backoffice-api/internal/domain/businessdays"
	infrapdf "github.com/onda-rd/backoffice-api/internal/infrastructure/pdf"
	"github.com/onda-rd/backoffice-api/internal/infrastructure/postgres"
	httpRouter "github.com/onda-rd/backoffice-api/internal/interfaces/http"
	"github.com/onda-rd/backoffice-api/pkg/config"
	"github.com/onda-rd/backoffice-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	companyRepo := postgres.NewCompanyRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	seqRepo := postgres.NewFiscalSequenceRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	sessionRepo := postgres.NewCashSessionRepository(pool)
	solicitudRepo := postgres.NewSolicitudRepository(pool)
	caseRepo := postgres.NewCaseRepository(pool)
	eventRepo := postgres.NewPaymentEventRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	fiscalUC := fiscal.NewAllocatorUseCase(seqRepo)
	cajaUC := caja.NewUseCase(sessionRepo, invoiceRepo, log)

	// El despachador se construye antes que el ledger porque el ledger lo
	// notifica tras cada pago; los handlers se registran después.
	dispatcher := events.NewDispatcher(eventRepo, 5*time.Second, log)

	ledgerUC := billing.NewLedgerUseCase(txRunner, invoiceRepo, cajaUC, dispatcher,
		billing.FiscalConfig{Serie: cfg.Fiscal.Serie, Tipo: cfg.Fiscal.Tipo}, log)

	certGen := infrapdf.NewMarotoCertificateGenerator(cfg.App.Name)
	registroUC := registro.NewWorkflowUseCase(
		solicitudRepo, companyRepo, categoryRepo, ledgerUC, certGen,
		registro.Config{VigenciaMeses: cfg.Registro.VigenciaMeses}, log)
	inspeccionUC := inspeccion.NewWorkflowUseCase(
		caseRepo, companyRepo, categoryRepo, ledgerUC, businessdays.NoHolidays{}, log)

	dispatcher.Register(registroUC, inspeccionUC)
	go func() {
		if err := dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("despachador de eventos finalizado")
		}
	}()

	// Barrido diario: abre expedientes de oficio por registros vencidos.
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := inspeccionUC.OpenLapsedRegistrations(ctx, time.Now())
				if err != nil {
					log.Error().Err(err).Msg("barrido de registros vencidos")
					continue
				}
				if n > 0 {
					log.Info().Int("expedientes", n).Msg("expedientes de oficio abiertos por vencimiento")
				}
			}
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    cfg.App.Name,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		FiscalUC:     fiscalUC,
		LedgerUC:     ledgerUC,
		CajaUC:       cajaUC,
		RegistroUC:   registroUC,
		InspeccionUC: inspeccionUC,
		JWTSecret:    cfg.JWT.Secret,
		WebhookToken: cfg.Webhook.Token,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("apagando...")
	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown HTTP")
	}
	log.Info().Msg("aplicación detenida")
}
