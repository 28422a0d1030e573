package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/cinelake/cinelake/internal/config"
	"github.com/cinelake/cinelake/internal/control"
	natsbus "github.com/cinelake/cinelake/internal/pipeline/events/nats"
	"github.com/cinelake/cinelake/internal/pipeline/repository"
	"github.com/cinelake/cinelake/internal/pipeline/service"
	whrepo "github.com/cinelake/cinelake/internal/warehouse/repository"
	"github.com/cinelake/cinelake/pkg/database"
	"github.com/cinelake/cinelake/pkg/events"
	"github.com/cinelake/cinelake/pkg/interfaces"
	"github.com/cinelake/cinelake/pkg/logger"
)

// scheduler invokes the staging pipeline on a cron schedule. Retry policy
// lives here, outside the pipeline: a failed run is simply retried at the
// next tick. Overlapping runs are skipped.
func main() {
	schedule := flag.String("schedule", getEnv("PIPELINE_SCHEDULE", "0 2 * * *"), "Cron schedule for pipeline runs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}

	log, err := logger.NewZapLogger(cfg.Log.Environment == "development")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, cleanup, err := database.NewGormDB(&database.PostgresConfig{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxLifetime:  cfg.Database.MaxLifetime,
	}, log.Zap())
	if err != nil {
		log.Fatal("Failed to connect to database", interfaces.Error(err))
	}
	defer cleanup()

	var bus interfaces.EventBus
	if cfg.NATS.URL != "" {
		natsBus, err := natsbus.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix, log)
		if err != nil {
			log.Fatal("Failed to connect to NATS", interfaces.Error(err))
		}
		bus = natsBus
	} else {
		bus = events.NewInMemoryEventBus(log)
	}
	defer bus.Stop()

	controlRepo := control.NewGormRepository(db)
	pipeline := service.NewPipeline(
		repository.NewGormRawRepository(db),
		repository.NewGormStagingRepository(db),
		whrepo.NewGormRepository(db),
		controlRepo,
		bus,
		log,
		cfg.Pipeline,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var running int32
	c := cron.New()
	_, err = c.AddFunc(*schedule, func() {
		if !atomic.CompareAndSwapInt32(&running, 0, 1) {
			log.Warn("Previous pipeline run still in progress, skipping tick")
			return
		}
		defer atomic.StoreInt32(&running, 0)

		result, err := pipeline.Run(ctx)
		if err != nil {
			log.Error("Scheduled pipeline run failed", interfaces.Error(err))
			return
		}
		log.Info("Scheduled pipeline run completed",
			interfaces.Int("loaded", result.Load.Loaded),
			interfaces.Any("duration", result.Duration))

		if entries, err := controlRepo.ListRecent(ctx, 4); err == nil {
			for _, entry := range entries {
				log.Info("Stage summary",
					interfaces.String("batch_id", entry.BatchID),
					interfaces.String("step", entry.StepName),
					interfaces.String("status", string(entry.Status)),
					interfaces.Int("processed", entry.RecordsProcessed))
			}
		}
	})
	if err != nil {
		log.Fatal("Invalid cron schedule", interfaces.Error(err))
	}

	log.Info("Scheduler started", interfaces.String("schedule", *schedule))
	c.Start()

	<-ctx.Done()
	log.Info("Scheduler stopping")
	<-c.Stop().Done()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
