// The tuner binary runs one full model-selection pass: load the games
// dataset, stratified split, cross-validated grid search over every
// candidate family, final held-out evaluation, and artifact
// persistence.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/openchess/tuner-api/internal/classifier"
	"github.com/openchess/tuner-api/internal/config"
	"github.com/openchess/tuner-api/internal/dataset"
	"github.com/openchess/tuner-api/internal/models"
	"github.com/openchess/tuner-api/internal/store"
	"github.com/openchess/tuner-api/internal/tuning"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Env)
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	games, err := loadGames(ctx, cfg, logger)
	if err != nil {
		sugar.Fatalw("Failed to load games", "error", err)
	}
	table, err := dataset.FromGames(games)
	if err != nil {
		sugar.Fatalw("Invalid games table", "error", err)
	}

	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		sugar.Fatalw("Failed to connect to Postgres", "error", err)
	}
	defer pg.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		sugar.Fatalw("Invalid Redis URL", "error", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	pipeline := &tuning.Pipeline{
		Families:        classifier.Registry(),
		Spec:            tuning.GamesSpec(),
		Response:        models.ColWinner,
		SplitStratify:   models.ColWinner,
		FoldStratify:    models.ColOpeningECO,
		TrainProportion: cfg.TrainProportion,
		Folds:           cfg.Folds,
		Seed:            cfg.Seed,
		Workers:         cfg.WorkerCount,
		Logger:          sugar,
		Checkpoints:     store.NewRedisCheckpoint(rdb, logger),
	}

	result, err := pipeline.Run(ctx, table)
	if err != nil {
		sugar.Fatalw("Pipeline failed", "error", err)
	}

	results := store.NewResultStore(pg, logger)
	if err := results.EnsureSchema(ctx); err != nil {
		sugar.Fatalw("Failed to prepare result tables", "error", err)
	}
	for _, family := range pipeline.Families {
		if tr, ok := result.Tuning[family.Name()]; ok {
			if err := results.SaveTuning(ctx, result.Report.RunID, tr); err != nil {
				sugar.Fatalw("Failed to persist tuning table", "family", family.Name(), "error", err)
			}
		}
	}
	if err := results.SaveReport(ctx, result.Report); err != nil {
		sugar.Fatalw("Failed to persist final report", "error", err)
	}

	sugar.Infow("Run persisted",
		"run_id", result.Report.RunID,
		"family", result.Best.Config.Family,
		"config", result.Best.Config.Key(),
		"cvMean", result.Best.Mean,
		"heldOutAUC", result.Report.HeldOutAUC,
	)
}

func loadGames(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]models.GameRecord, error) {
	if cfg.GamesCSVPath != "" {
		return store.LoadGamesCSV(cfg.GamesCSVPath, logger)
	}

	opts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		return nil, fmt.Errorf("clickhouse dsn: %w", err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("clickhouse connect: %w", err)
	}
	defer conn.Close()
	return store.NewGamesSource(conn, logger).Load(ctx)
}

func newLogger(env string) *zap.Logger {
	if env == "production" {
		logger, _ := zap.NewProduction()
		return logger
	}
	logger, _ := zap.NewDevelopment()
	return logger
}
