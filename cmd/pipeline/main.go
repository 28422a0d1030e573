package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

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

func main() {
	stage := flag.String("stage", "all", "Pipeline stage to run: all, deduplicate, standardize, validate, load")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	if cfg.Log.Environment == "development" {
		logCfg = logger.DevelopmentConfig()
	}
	log, err := logger.NewFromConfig(logCfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("Pipeline starting",
		interfaces.String("stage", *stage),
		interfaces.String("source", cfg.Pipeline.Source))

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

	pipeline := service.NewPipeline(
		repository.NewGormRawRepository(db),
		repository.NewGormStagingRepository(db),
		whrepo.NewGormRepository(db),
		control.NewGormRepository(db),
		bus,
		log,
		cfg.Pipeline,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runStage(ctx, pipeline, *stage); err != nil {
		log.Error("Pipeline failed", interfaces.Error(err))
		cleanup()
		log.Sync()
		os.Exit(1)
	}
}

func runStage(ctx context.Context, pipeline *service.Pipeline, stage string) error {
	switch stage {
	case "deduplicate":
		_, err := pipeline.Deduplicate(ctx)
		return err
	case "standardize":
		_, err := pipeline.Standardize(ctx)
		return err
	case "validate":
		_, err := pipeline.Validate(ctx)
		return err
	case "load":
		_, err := pipeline.Load(ctx)
		return err
	default:
		_, err := pipeline.Run(ctx)
		return err
	}
}
