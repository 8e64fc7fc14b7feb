package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/auth"
	authpg "github.com/frahmantamala/projecthub/internal/auth/postgres"
	"github.com/frahmantamala/projecthub/internal/client"
	clientpg "github.com/frahmantamala/projecthub/internal/client/postgres"
	"github.com/frahmantamala/projecthub/internal/core/database"
	"github.com/frahmantamala/projecthub/internal/core/events"
	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
	"github.com/frahmantamala/projecthub/internal/document"
	documentpg "github.com/frahmantamala/projecthub/internal/document/postgres"
	"github.com/frahmantamala/projecthub/internal/leave"
	leavepg "github.com/frahmantamala/projecthub/internal/leave/postgres"
	"github.com/frahmantamala/projecthub/internal/messaging"
	messagingpg "github.com/frahmantamala/projecthub/internal/messaging/postgres"
	"github.com/frahmantamala/projecthub/internal/notification"
	"github.com/frahmantamala/projecthub/internal/project"
	projectpg "github.com/frahmantamala/projecthub/internal/project/postgres"
	"github.com/frahmantamala/projecthub/internal/report"
	reportpg "github.com/frahmantamala/projecthub/internal/report/postgres"
	"github.com/frahmantamala/projecthub/internal/storage"
	"github.com/frahmantamala/projecthub/internal/summary"
	"github.com/frahmantamala/projecthub/internal/task"
	taskpg "github.com/frahmantamala/projecthub/internal/task/postgres"
	"github.com/frahmantamala/projecthub/internal/team"
	teampg "github.com/frahmantamala/projecthub/internal/team/postgres"
	"github.com/frahmantamala/projecthub/internal/training"
	trainingpg "github.com/frahmantamala/projecthub/internal/training/postgres"
	"github.com/frahmantamala/projecthub/internal/transport/middleware"
	"github.com/frahmantamala/projecthub/internal/transport/rest"
	"github.com/frahmantamala/projecthub/internal/transport/swagger"
	"github.com/frahmantamala/projecthub/internal/user"
	userpg "github.com/frahmantamala/projecthub/internal/user/postgres"
	"github.com/frahmantamala/projecthub/internal/worklog"
	worklogpg "github.com/frahmantamala/projecthub/internal/worklog/postgres"
	"github.com/frahmantamala/projecthub/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var openAPIPath string

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func init() {
	httpServerCmd.Flags().StringVar(&openAPIPath, "openapi", "./api/openapi.yml", "path of the OpenAPI document served at /openapi.yml")
}

// Dependencies is everything the server owns and has to release on shutdown.
type Dependencies struct {
	Config     *internal.Config
	DB         *sqlx.DB
	Gorm       *gorm.DB
	Redis      *redis.Client
	Router     *chi.Mux
	EventBus   *events.EventBus
	Dispatcher *notification.Dispatcher
	Hub        *messaging.Hub
	Scheduler  *summary.Scheduler
	Logger     *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	cfg := deps.Config.Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	if deps.Scheduler != nil {
		deps.Scheduler.Start()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		deps.Logger.Error("Server shutdown error", "error", err)
	}
	deps.Close(ctx)

	deps.Logger.Info("Server stopped")
}

// Close stops background work in reverse start order, then closes the stores.
func (d *Dependencies) Close(ctx context.Context) {
	if d.Scheduler != nil {
		if err := d.Scheduler.Stop(ctx); err != nil {
			d.Logger.Error("Scheduler stop error", "error", err)
		}
	}
	if d.Hub != nil {
		d.Hub.Close()
	}
	if d.EventBus != nil {
		if err := d.EventBus.Drain(ctx); err != nil {
			d.Logger.Error("Event bus drain error", "error", err)
		}
	}
	if d.Dispatcher != nil {
		if err := d.Dispatcher.Shutdown(ctx); err != nil {
			d.Logger.Error("Mail dispatcher shutdown error", "error", err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := initLogger(config.Observability.Logging)

	db, gdb, err := initDB(config.Database, config.Observability.Logging.Level == "debug")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps := &Dependencies{Config: config, DB: db, Gorm: gdb, Logger: lg}

	deps.Redis, err = initRedis(config.Redis)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store, err := initStorage(config.Storage, config.Server.BaseURL)
	if err != nil {
		deps.Close(context.Background())
		return nil, err
	}

	deps.EventBus = events.NewEventBus(lg)
	deps.Dispatcher = notification.NewDispatcher(notification.NewMailer(config.Mail, lg), notification.DispatcherConfig{
		MaxWorkers: config.Mail.MaxWorkers,
		QueueSize:  config.Mail.QueueSize,
	}, lg)
	directory := coreuser.NewDirectory(gdb)

	var locker messaging.PairLocker = messaging.NewKeyedMutex()
	if deps.Redis != nil {
		locker = messaging.NewRedisLocker(deps.Redis, config.Redis.LockTTL)
	}

	authService := auth.NewService(
		authpg.NewRepository(gdb),
		auth.NewJWTTokenGenerator(config.Security.JWTAccessSecret, config.Security.JWTRefreshSecret,
			config.Security.AccessTokenDuration, config.Security.RefreshTokenDuration),
		config.Security.BCryptCost,
		lg,
	)

	reportRepo := reportpg.NewReportRepository(gdb)
	documentRepo := documentpg.NewDocumentRepository(gdb)

	deps.Hub = messaging.NewHub(config.Server.AllowedOrigins, lg)
	messagingService := messaging.NewService(messagingpg.NewMessagingRepository(gdb), directory, locker, deps.EventBus, store, lg)

	deps.EventBus.Subscribe(events.EventTypeMessageSent, deps.Hub.HandleMessageSent)
	deps.EventBus.Subscribe(events.EventTypeReportFiled, report.NewFiledNotifier(directory, deps.Dispatcher, lg).Handle)

	handlers := rest.Handlers{
		Health:    rest.NewHealthHandler(db, deps.Redis),
		Auth:      auth.NewHandler(authService),
		RBAC:      authService.RBACAuthorization(),
		Users:     user.NewHandler(user.NewService(userpg.NewUserRepository(gdb), authService, config.Security.BCryptCost, lg)),
		Projects:  project.NewHandler(project.NewService(projectpg.NewProjectRepository(gdb), directory, lg)),
		Tasks:     task.NewHandler(task.NewService(taskpg.NewTaskRepository(gdb), directory, deps.Dispatcher, lg)),
		Teams:     team.NewHandler(team.NewService(teampg.NewTeamRepository(gdb), directory, lg)),
		Clients:   client.NewHandler(client.NewService(clientpg.NewClientRepository(gdb), lg)),
		Leaves:    leave.NewHandler(leave.NewService(leavepg.NewLeaveRepository(gdb), directory, deps.Dispatcher, lg)),
		WorkLogs:  worklog.NewHandler(worklog.NewService(worklogpg.NewWorkLogRepository(gdb), lg)),
		Trainings: training.NewHandler(training.NewService(trainingpg.NewTrainingRepository(gdb), directory, deps.Dispatcher, lg)),

		Reports:      report.NewHandler(report.NewService(report.CategoryGeneral, reportRepo, deps.EventBus, lg)),
		HSEReports:   report.NewHandler(report.NewService(report.CategoryHSE, reportRepo, deps.EventBus, lg)),
		Documents:    document.NewHandler(document.NewService(document.CategoryGeneral, documentRepo, store, lg)),
		HSEDocuments: document.NewHandler(document.NewService(document.CategoryHSE, documentRepo, store, lg)),

		Messages: messaging.NewHandler(messagingService),
		Hub:      deps.Hub,
		Uploads:  storage.NewUploadMiddleware(store, config.Server.MaxUploadBytes, lg),
	}

	metricsPath := ""
	if config.Observability.Metrics.Enabled {
		handlers.Metrics = middleware.NewMetrics()
		metricsPath = config.Observability.Metrics.Path
		registerRuntimeGauges(handlers.Metrics.Registerer(), deps)
	}

	if _, err := swagger.Load(context.Background(), openAPIPath); err != nil {
		lg.Warn("OpenAPI document not served cleanly", "path", openAPIPath, "error", err)
	}

	deps.Router = rest.NewRouter(handlers, rest.RouterConfig{
		AllowedOrigins: config.Server.AllowedOrigins,
		MetricsPath:    metricsPath,
		OpenAPIPath:    openAPIPath,
	}, lg)

	if config.Scheduler.Enabled {
		deps.Scheduler, err = newWeeklySummaryScheduler(config.Scheduler, db, directory, deps.Dispatcher, lg)
		if err != nil {
			deps.Close(context.Background())
			return nil, err
		}
	}

	return deps, nil
}

func registerRuntimeGauges(reg prometheus.Registerer, deps *Dependencies) {
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "projecthub",
			Name:      "websocket_connections",
			Help:      "Open messaging websocket connections",
		}, func() float64 { return float64(deps.Hub.TotalConnections()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "projecthub",
			Name:      "db_open_connections",
			Help:      "Open database connections",
		}, func() float64 { return float64(deps.DB.Stats().OpenConnections) }),
	)
}

func newWeeklySummaryScheduler(cfg internal.SchedulerConfig, db *sqlx.DB, directory *coreuser.Directory, notifier notification.Notifier, lg *slog.Logger) (*summary.Scheduler, error) {
	spec := cfg.WeeklySummarySpec
	if spec == "" {
		spec = internal.DefaultWeeklySummarySpec
	}
	job := summary.NewJob(summary.NewStatsRepository(db), directory, notifier, lg)
	return summary.NewScheduler(spec, job, lg)
}

func initLogger(cfg internal.LoggingConfig) *slog.Logger {
	level, format := cfg.Level, cfg.Format
	if level == "" {
		level = "info"
	}
	if format == "" {
		format = "text"
	}
	return logger.Configure(os.Stdout, level, format)
}

// initDB opens the pgx pool through sqlx and layers gorm on the same connections.
func initDB(cfg internal.DatabaseConfig, debug bool) (*sqlx.DB, *gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	gdb, err := database.NewGorm(db, debug)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, gdb, nil
}

// initRedis returns nil when no address is configured.
func initRedis(cfg internal.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// initStorage falls back to process memory when no bucket is configured.
func initStorage(cfg internal.StorageConfig, baseURL string) (storage.BlobStore, error) {
	if cfg.Bucket == "" {
		slog.Warn("no storage bucket configured, uploads are kept in memory")
		return storage.NewMemoryStore(baseURL), nil
	}
	client, err := storage.NewS3Client(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return client, nil
}
