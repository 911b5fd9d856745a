// Command migrate переводит legacy-данные (время "HH:MM" и длительности в
// минутах) в слотовое представление. Запускается офлайн, повторный запуск
// ничего не меняет.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/config"
	legacyRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/legacy"
	migrateLegacyUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/migrate_legacy"
	"github.com/m04kA/SMC-SchedulingService/migrations"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

func main() {
	configPath := flag.String("config", "config.toml", "путь к файлу конфигурации")
	schemaOnly := flag.Bool("schema", false, "только применить миграции схемы")
	dryRun := flag.Bool("dry-run", false, "посчитать результат без записи в БД")
	batchSize := flag.Int("batch", 0, "размер пакета (по умолчанию из конфигурации)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}

	// Схема нужна в любом случае: migrated_at и слотовые колонки
	version, err := migrations.Up(ctx, db)
	if err != nil {
		log.Fatal("Failed to apply schema migrations: %v", err)
	}
	log.Info("Schema is at version %d", version)

	if *schemaOnly {
		return
	}

	settings := migrateLegacyUC.Settings{
		BatchSize: cfg.Migration.BatchSize,
		DryRun:    cfg.Migration.DryRun || *dryRun,
	}
	if *batchSize > 0 {
		settings.BatchSize = *batchSize
	}

	wrappedDB := dbmetrics.Wrap(db, nil)
	useCase := migrateLegacyUC.NewUseCase(
		legacyRepo.NewRepository(wrappedDB),
		txmanager.NewTransactionManager(wrappedDB),
		settings,
		log,
	)

	started := time.Now()
	summary, err := useCase.Execute(ctx)
	if err != nil {
		log.Error("Migration aborted: %v", err)
	}

	if summary != nil {
		fmt.Printf("run=%s dry_run=%t processed=%d migrated=%d errored=%d notes=%d elapsed=%s\n",
			summary.RunID, summary.DryRun, summary.Processed, summary.Migrated, summary.Errored, summary.Notes,
			time.Since(started).Round(time.Millisecond))
		for _, e := range summary.Errors {
			fmt.Printf("  %s id=%d: %v\n", e.Entity, e.RecordID, e.Err)
		}
	}

	if err != nil {
		log.Close()
		os.Exit(1)
	}
}
