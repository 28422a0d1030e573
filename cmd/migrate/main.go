package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/cinelake/cinelake/internal/control"
	"github.com/cinelake/cinelake/internal/pipeline/repository"
	whrepo "github.com/cinelake/cinelake/internal/warehouse/repository"
	"github.com/cinelake/cinelake/pkg/database"
	"go.uber.org/zap"
)

func main() {
	var (
		host     = flag.String("host", getEnv("DB_HOST", "localhost"), "Database host")
		port     = flag.Int("port", getEnvAsInt("DB_PORT", 5432), "Database port")
		user     = flag.String("user", getEnv("DB_USER", "cinelake"), "Database user")
		password = flag.String("password", getEnv("DB_PASSWORD", "cinelake"), "Database password")
		dbname   = flag.String("dbname", getEnv("DB_NAME", "cinelake"), "Database name")
		sslmode  = flag.String("sslmode", getEnv("DB_SSLMODE", "disable"), "SSL mode")
	)
	flag.Parse()

	cfg := &database.PostgresConfig{
		Host:     *host,
		Port:     *port,
		User:     *user,
		Password: *password,
		Database: *dbname,
		SSLMode:  *sslmode,
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	db, cleanup, err := database.NewGormDB(cfg, zapLogger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer cleanup()

	fmt.Println("Running database migrations...")

	if err := db.AutoMigrate(
		// Control log first, so failed later steps can still be recorded.
		&control.ProcessingLogModel{},
		// Staging side
		&repository.RawMovieModel{},
		&repository.StagingMovieModel{},
		&repository.ValidationErrorModel{},
		// Warehouse side
		&whrepo.DimGenreModel{},
		&whrepo.DimCountryModel{},
		&whrepo.DimPersonModel{},
		&whrepo.FactMovieModel{},
		&whrepo.BridgeMovieGenreModel{},
		&whrepo.BridgeMovieCountryModel{},
		&whrepo.BridgeMoviePersonModel{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	fmt.Println("Migrations completed successfully!")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
