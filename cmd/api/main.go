package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/jhoicas/agency-billing-api/internal/application/audit"
	"github.com/jhoicas/agency-billing-api/internal/application/auth"
	"github.com/jhoicas/agency-billing-api/internal/application/billing"
	"github.com/jhoicas/agency-billing-api/internal/application/dto"
	"github.com/jhoicas/agency-billing-api/internal/application/workflow"
	"github.com/jhoicas/agency-billing-api/internal/domain"
	"github.com/jhoicas/agency-billing-api/internal/domain/entity"
	"github.com/jhoicas/agency-billing-api/internal/domain/repository"
	"github.com/jhoicas/agency-billing-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/agency-billing-api/internal/infrastructure/pdf"
	"github.com/jhoicas/agency-billing-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/agency-billing-api/internal/interfaces/http"
	"github.com/jhoicas/agency-billing-api/pkg/config"
	"github.com/jhoicas/agency-billing-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var txRunner repository.TxRunner
	switch cfg.App.Store {
	case config.StoreMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		txRunner = memory.NewStore()
	default:
		if cfg.DB.AutoMigrate {
			if err := postgres.MigrateUp(cfg.DB.ConnectionString()); err != nil {
				log.Fatal().Err(err).Msg("aplicar migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
	}

	billingCfg := billing.Config{
		TaxRate:       cfg.Billing.TaxRate,
		InvoicePrefix: cfg.Billing.InvoicePrefix,
		Location:      cfg.Billing.Location,
	}

	recorder := audit.NewRecorder(txRunner)
	authUC := auth.NewAuthUseCase(txRunner, recorder, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	bootstrapAdmin(ctx, authUC, cfg.Bootstrap, log)

	invoicePDFUC := billing.NewPDFUseCase(txRunner, infrapdf.NewMarotoPDFGenerator(cfg.App.Name))

	httpLog := log.Component("http")
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(httpLog),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(httpLog))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		ClientUC:         billing.NewClientUseCase(txRunner, recorder),
		SOWUC:            workflow.NewSOWUseCase(txRunner, recorder),
		ProjectUC:        workflow.NewProjectUseCase(txRunner, recorder),
		TimesheetUC:      workflow.NewTimesheetUseCase(txRunner, recorder),
		Generator:        billing.NewInvoiceGenerator(txRunner, recorder, billingCfg, log.Component("invoices")),
		Lifecycle:        billing.NewInvoiceLifecycle(txRunner, recorder, billingCfg),
		InvoicePDF:       invoicePDFUC,
		Audit:            recorder,
		JWTSecret:        cfg.JWT.Secret,
		AppName:          cfg.App.Name,
		InvoiceRateLimit: cfg.HTTP.RateLimitPerMinute,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// bootstrapAdmin crea el primer administrador si BOOTSTRAP_ADMIN_EMAIL está definido.
func bootstrapAdmin(ctx context.Context, authUC *auth.AuthUseCase, cfg config.BootstrapConfig, log *logger.Logger) {
	if cfg.AdminEmail == "" {
		return
	}
	u, err := authUC.RegisterUser(ctx, "", dto.RegisterRequest{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		FullName: "Administrador",
		Role:     entity.RoleAdmin,
	})
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		log.Debug().Str("email", cfg.AdminEmail).Msg("admin inicial ya existe")
	case err != nil:
		log.Fatal().Err(err).Msg("crear admin inicial")
	default:
		log.Info().Str("user_id", u.ID).Msg("admin inicial creado")
	}
}
