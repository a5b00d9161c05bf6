package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jhoicas/CRM-api/docs"
	appanalytics "github.com/jhoicas/CRM-api/internal/application/analytics"
	"github.com/jhoicas/CRM-api/internal/application/auth"
	"github.com/jhoicas/CRM-api/internal/application/messaging"
	"github.com/jhoicas/CRM-api/internal/application/ports"
	"github.com/jhoicas/CRM-api/internal/application/projects"
	"github.com/jhoicas/CRM-api/internal/application/sales"
	"github.com/jhoicas/CRM-api/internal/application/usecase"
	infraai "github.com/jhoicas/CRM-api/internal/infrastructure/ai"
	infracache "github.com/jhoicas/CRM-api/internal/infrastructure/cache"
	infraevents "github.com/jhoicas/CRM-api/internal/infrastructure/events"
	inframetrics "github.com/jhoicas/CRM-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/CRM-api/internal/infrastructure/pdf"
	"github.com/jhoicas/CRM-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/CRM-api/internal/interfaces/http"
	"github.com/jhoicas/CRM-api/pkg/config"
	"github.com/jhoicas/CRM-api/pkg/logger"
)

const (
	aiTimeout         = 30 * time.Second
	memoryCacheMaxLen = 10000
)

// @title                       CRM API
// @version                     1.0
// @description                 Leads, ventas, proyectos, mensajería y asistente IA con permisos por módulo.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	if cfg.App.AutoMigrate {
		if err := postgres.Migrate(ctx, cfg.DB.ConnectionString(), postgres.MigrateUp); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	repos := postgres.NewRepos(pool)
	txRunner := postgres.NewTxRunner(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)

	metrics := inframetrics.New(prometheus.DefaultRegisterer)

	// Caché de permisos: Redis si hay URL; si no, memoria del proceso.
	var cache ports.Cache = infracache.NewMemoryCache(memoryCacheMaxLen)
	if cfg.Redis.URL != "" {
		rc, err := infracache.NewRedisCache(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, se usa caché en memoria")
		} else {
			defer rc.Close()
			cache = rc
		}
	}

	// Eventos de dominio: Kafka si hay brokers; si no, solo log.
	var publisher ports.EventPublisher = infraevents.NewNopPublisher(log)
	if len(cfg.Kafka.Brokers) > 0 {
		kp := infraevents.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, metrics, log)
		defer kp.Close()
		publisher = kp
	}

	llm, err := infraai.New(cfg.AI)
	if err != nil {
		log.Fatal().Err(err).Msg("proveedor IA")
	}
	if llm == nil {
		log.Warn().Msg("sin API key de IA: /api/ai/chat responderá 503")
	}

	perms := usecase.NewPermissionService(repos.Roles, cache, cfg.Permissions.CacheTTL, metrics, log)
	authUC := auth.NewAuthUseCase(repos.Users, perms, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	roleUC := usecase.NewRoleUseCase(repos.Roles, txRunner, perms)
	adminUC := usecase.NewAdminUseCase(repos.Users, repos.Roles, txRunner, perms)
	employeeUC := usecase.NewEmployeeUseCase(repos.Employees, repos.Tasks)
	leadUC := usecase.NewLeadUseCase(repos.Leads)
	salesUC := sales.NewDispositionUseCase(
		repos.Dispositions, repos.Leads, txRunner, publisher,
		infrapdf.NewMarotoReceiptGenerator(), log,
	)
	projectUC := projects.NewProjectUseCase(repos.Projects, repos.Dispositions, repos.Employees, publisher, log)
	taskUC := projects.NewTaskUseCase(repos.Tasks, repos.Projects, repos.Employees, txRunner)
	messagingUC := messaging.NewUseCase(repos.Conversations, txRunner)
	aiUC := usecase.NewAIUseCase(
		llm, repos.Conversations, txRunner,
		usecase.NewUserLimiter(cfg.AI.RatePerMinute, cfg.AI.RateBurst),
		usecase.AIConfig{HistoryLimit: cfg.AI.HistoryLimit, Timeout: aiTimeout},
		metrics, log,
	)
	dashboardUC := appanalytics.NewDashboardUseCase(analyticsRepo)
	performanceUC := appanalytics.NewPerformanceUseCase(repos.Performance)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http").Zerolog()))
	app.Use(httpRouter.Metrics(metrics))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "CRM API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		Permissions:   perms,
		RoleUC:        roleUC,
		AdminUC:       adminUC,
		EmployeeUC:    employeeUC,
		LeadUC:        leadUC,
		SalesUC:       salesUC,
		ProjectUC:     projectUC,
		TaskUC:        taskUC,
		MessagingUC:   messagingUC,
		AIUC:          aiUC,
		DashboardUC:   dashboardUC,
		PerformanceUC: performanceUC,
		JWTSecret:     cfg.JWT.Secret,
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
