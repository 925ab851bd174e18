package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/pelita-edu/pelita/internal/app"
	"github.com/pelita-edu/pelita/internal/auth"
	"github.com/pelita-edu/pelita/internal/calendar"
	"github.com/pelita-edu/pelita/internal/observability"
	"github.com/pelita-edu/pelita/internal/platform/cache"
	"github.com/pelita-edu/pelita/internal/platform/db"
	"github.com/pelita-edu/pelita/internal/programs"
	"github.com/pelita-edu/pelita/internal/rbac"
	"github.com/pelita-edu/pelita/internal/shared"
	"github.com/pelita-edu/pelita/internal/students"
	"github.com/pelita-edu/pelita/internal/users"
	"github.com/pelita-edu/pelita/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolConfig{})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "pelita_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	notifyClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, logger)
	defer func() {
		if err := notifyClient.Close(); err != nil {
			logger.Warn("notify client close", slog.Any("error", err))
		}
	}()

	rbacService := rbac.NewService(rbac.NewRepository(pool))
	if err := rbacService.EnsureBootstrapRoles(ctx); err != nil {
		logger.Error("bootstrap roles", slog.Any("error", err))
		os.Exit(1)
	}
	gate := rbac.Gate{Logger: logger, ExposeRequirement: cfg.ExposeAuthzRequirement}

	authService := auth.NewService(auth.NewRepository(pool), rbacService)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	rbacHandler := rbac.NewHandler(logger, rbacService, gate, notifyClient)

	usersService := users.NewService(users.NewRepository(pool), rbacService)
	usersHandler := users.NewHandler(logger, usersService, gate)

	programsService := programs.NewService(programs.NewRepository(pool))
	programsHandler := programs.NewHandler(logger, programsService, gate)

	studentsService := students.NewService(students.NewRepository(pool))
	studentsHandler := students.NewHandler(logger, studentsService, gate)

	calendarService := calendar.NewService(calendar.NewRepository(pool), notifyClient)
	calendarHandler := calendar.NewHandler(logger, calendarService, gate)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	notificationsHandler := jobs.NewHandler(notifyClient, inspector, gate, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		AuthHandler:          authHandler,
		RBACHandler:          rbacHandler,
		UsersHandler:         usersHandler,
		ProgramsHandler:      programsHandler,
		StudentsHandler:      studentsHandler,
		CalendarHandler:      calendarHandler,
		NotificationsHandler: notificationsHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
