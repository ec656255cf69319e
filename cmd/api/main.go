package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/config"
	v1 "github.com/pbvieira/bsam-gestao-associacao-sub001/internal/handler/v1"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/repository"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/service"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/pkg/auth"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/pkg/database"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/pkg/logger"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/pkg/metrics"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/pkg/tracer"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		log.Error("tracer init failed", zap.Error(err))
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Error("database connection failed", zap.Error(err))
		return err
	}

	if err := database.Migrate(db, log); err != nil {
		log.Error("migration failed", zap.Error(err))
		return err
	}

	collector := metrics.NewCollector("associacao")
	jwtManager := auth.NewJWTManager(cfg.JWT)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	residentRepo := repository.NewResidentRepository(db)
	medicationRepo := repository.NewMedicationRepository(db)
	doseLogRepo := repository.NewDoseLogRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	attendanceRepo := repository.NewAttendanceLogRepository(db)

	// Services
	auditSvc := service.NewAuditService(auditRepo, log)
	authSvc := service.NewAuthService(userRepo, jwtManager, log)
	residentSvc := service.NewResidentService(residentRepo, auditSvc, log)
	medicationSvc := service.NewMedicationService(medicationRepo, residentRepo, auditSvc, log)
	roundSvc := service.NewRoundService(medicationRepo, doseLogRepo, userRepo, auditSvc, log, time.Now)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, attendanceRepo, residentRepo, userRepo, auditSvc, log, time.Now)

	router := v1.NewRouter(v1.RouterDeps{
		Config:       cfg,
		Log:          log,
		Collector:    collector,
		JWTManager:   jwtManager,
		DB:           db,
		Auth:         v1.NewAuthHandler(authSvc),
		Residents:    v1.NewResidentHandler(residentSvc, collector),
		Medications:  v1.NewMedicationHandler(medicationSvc),
		Rounds:       v1.NewRoundHandler(roundSvc, collector),
		Appointments: v1.NewAppointmentHandler(appointmentSvc, collector),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("server failed", zap.Error(err))
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return err
	}

	// Flush buffered audit entries before exiting.
	auditSvc.Shutdown()

	log.Info("stopped")
	return nil
}
