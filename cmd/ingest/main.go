package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/cinelake/cinelake/internal/config"
	"github.com/cinelake/cinelake/internal/pipeline/domain"
	"github.com/cinelake/cinelake/internal/pipeline/repository"
	"github.com/cinelake/cinelake/pkg/database"
	"github.com/cinelake/cinelake/pkg/interfaces"
	"github.com/cinelake/cinelake/pkg/logger"
)

// ingest appends a crawler-produced raw batch file to the raw store,
// where the deduplication stage will pick it up as the pending batch.
func main() {
	file := flag.String("file", "", "Path to a raw batch JSON file")
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

	if *file == "" {
		log.Fatal("Missing required -file flag")
	}

	content, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal("Failed to read batch file", interfaces.Error(err))
	}

	var batch domain.RawBatch
	if err := json.Unmarshal(content, &batch); err != nil {
		log.Fatal("Failed to parse batch file", interfaces.Error(err))
	}

	crawledAt := time.Now().UTC()
	if ts, err := time.Parse(time.RFC3339, batch.Metadata.CrawledAt); err == nil {
		crawledAt = ts
	}
	source := batch.Metadata.Source
	if source == "" {
		source = cfg.Pipeline.Source
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	raw := repository.NewGormRawRepository(db)
	count, err := raw.Append(ctx, source, batch.Data, crawledAt)
	if err != nil {
		log.Fatal("Failed to append raw batch", interfaces.Error(err))
	}

	log.Info("Raw batch ingested",
		interfaces.String("source", source),
		interfaces.Int("records", count))
}
