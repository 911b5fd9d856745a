package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/cancel_appointment"
	completeAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/complete_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_appointment"
	getAvailabilityHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_availability"
	listStaffAppointmentsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/list_staff_appointments"
	reserveSlotHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/reserve_slot"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/config"
	appointmentRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/appointment"
	serviceRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/service"
	staffRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/staff"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/availabilitybus"
	appointmentsService "github.com/m04kA/SMC-SchedulingService/internal/service/appointments"
	getAvailabilityUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_availability"
	reserveSlotUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/reserve_slot"
	"github.com/m04kA/SMC-SchedulingService/migrations"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// Notifier общий интерфейс publisher'а и его no-op варианта
type Notifier interface {
	NotifyChanged(ctx context.Context, staffID int64, date time.Time, reason string)
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-SchedulingService...")
	log.Info("Scheduling: timezone=%s, advance_booking_days=%d, min_booking_notice_minutes=%d",
		cfg.Scheduling.Location(), cfg.Scheduling.AdvanceBookingDays, cfg.Scheduling.MinBookingNoticeMinutes)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Применяем миграции схемы
	if cfg.Database.AutoMigrate {
		version, err := migrations.Up(context.Background(), db)
		if err != nil {
			log.Fatal("Failed to apply schema migrations: %v", err)
		}
		log.Info("Schema is at version %d", version)
	}

	// Обёртка БД: с метриками или без
	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	// Инициализируем репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	serviceRepository := serviceRepo.NewRepository(wrappedDB)
	staffRepository := staffRepo.NewRepository(wrappedDB)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Публикация событий инвалидации доступности
	var notifier Notifier = availabilitybus.Noop{}
	if cfg.Invalidation.Enabled {
		publisher := availabilitybus.NewPublisher(
			cfg.Invalidation.Addr,
			cfg.Invalidation.Password,
			cfg.Invalidation.DB,
			cfg.Invalidation.Channel,
			time.Duration(cfg.Invalidation.Timeout)*time.Second,
			log,
		)
		defer publisher.Close()

		if err := publisher.Ping(context.Background()); err != nil {
			log.Warn("Invalidation publisher is not reachable yet: %v", err)
		}
		notifier = publisher
		log.Info("Invalidation events enabled (redis=%s, channel=%s)", cfg.Invalidation.Addr, cfg.Invalidation.Channel)
	}

	// Метрики резервирования передаём только если они включены
	var reservationMetrics reserveSlotUC.MetricsRecorder
	if metricsCollector != nil {
		reservationMetrics = metricsCollector
	}

	// Инициализируем сервисы
	appointmentSvc := appointmentsService.NewService(appointmentRepository, txMgr, notifier, log)

	// Инициализируем use cases
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		staffRepository,
		serviceRepository,
		appointmentRepository,
		getAvailabilityUC.Settings{
			Location:                cfg.Scheduling.Location(),
			AdvanceBookingDays:      cfg.Scheduling.AdvanceBookingDays,
			MinBookingNoticeMinutes: cfg.Scheduling.MinBookingNoticeMinutes,
		},
		log,
	)

	reserveSlotUseCase := reserveSlotUC.NewUseCase(
		staffRepository,
		serviceRepository,
		appointmentRepository,
		txMgr,
		notifier,
		reservationMetrics,
		reserveSlotUC.Settings{
			Location:                cfg.Scheduling.Location(),
			AdvanceBookingDays:      cfg.Scheduling.AdvanceBookingDays,
			MinBookingNoticeMinutes: cfg.Scheduling.MinBookingNoticeMinutes,
		},
		log,
	)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	reserveSlot := reserveSlotHandler.NewHandler(reserveSlotUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	completeAppointment := completeAppointmentHandler.NewHandler(appointmentSvc, log)
	listStaffAppointments := listStaffAppointmentsHandler.NewHandler(appointmentSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware и endpoint (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// Доступность: только чтение, носит рекомендательный характер
	api.HandleFunc("/staff/{staffId}/availability", getAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/staff/{staffId}/appointments", listStaffAppointments.Handle).Methods(http.MethodGet)

	// Резервирование диапазона слотов (авторитетная проверка)
	api.HandleFunc("/appointments", reserveSlot.Handle).Methods(http.MethodPost)

	// Жизненный цикл записи
	api.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{appointmentId}/complete", completeAppointment.Handle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
