package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/docease/docease-api/internal/config"
	v1 "github.com/docease/docease-api/internal/handler/v1"
	"github.com/docease/docease-api/internal/jobs"
	"github.com/docease/docease-api/internal/repository"
	"github.com/docease/docease-api/internal/service"
	"github.com/docease/docease-api/internal/timeutil"
	"github.com/docease/docease-api/pkg/auth"
	"github.com/docease/docease-api/pkg/database"
	"github.com/docease/docease-api/pkg/logger"
	"github.com/docease/docease-api/pkg/metrics"
	"github.com/docease/docease-api/pkg/tracer"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("logger init failed: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting docease-api",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("timezone", cfg.Scheduling.Timezone),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		log.Fatal("tracer init failed", zap.Error(err))
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	if err := database.Migrate(db, log); err != nil {
		log.Fatal("database migrate failed", zap.Error(err))
	}

	collector := metrics.NewCollector(cfg.App.Name)
	jwtManager := auth.NewJWTManager(cfg.JWT)
	normalizer := timeutil.NewNormalizer(cfg.Scheduling.Location())

	userRepo := repository.NewUserRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditSvc := service.NewAuditService(auditRepo, collector, log)
	authSvc := service.NewAuthService(userRepo, jwtManager, auditSvc, cfg.App.AdminEmails, log)
	scheduleSvc := service.NewScheduleService(scheduleRepo, auditSvc, collector, log)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, userRepo, scheduleSvc, normalizer, auditSvc, collector, log)
	adminSvc := service.NewAdminService(userRepo, appointmentRepo, scheduleRepo, auditSvc, log)

	engine := v1.NewRouter(v1.RouterDeps{
		Config:       cfg,
		Logger:       log,
		JWTManager:   jwtManager,
		Metrics:      collector,
		Auth:         v1.NewAuthHandler(authSvc),
		Availability: v1.NewAvailabilityHandler(scheduleSvc),
		Appointments: v1.NewAppointmentHandler(appointmentSvc),
		Admin:        v1.NewAdminHandler(adminSvc, appointmentSvc),
	})

	completer := jobs.NewCompleter(appointmentRepo, cfg.Scheduling.Location(), log)
	if err := completer.Start(); err != nil {
		log.Fatal("completion job start failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutdown signal received", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}

	completer.Stop()
	auditSvc.Shutdown()

	if err := tp.Shutdown(ctx); err != nil {
		log.Error("tracer shutdown failed", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("shutdown complete")
}
