package app

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	_ "github.com/lib/pq"

	"github.com/mcansh/snkrs-sub000/internal/config"
	"github.com/mcansh/snkrs-sub000/internal/db"
	"github.com/mcansh/snkrs-sub000/internal/kv"
)

type infra struct {
	db    *sql.DB
	redis *kv.Redis
}

func setupInfra(ctx context.Context, cfg config.Config, log zerolog.Logger) (*infra, error) {
	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := db.RunKeystoneMigration(ctx, sqlDB); err != nil {
		return nil, err
	}

	log.Info().Msg("database ready")

	redisClient, err := kv.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}

	log.Info().Msg("redis ready")

	return &infra{
		db:    sqlDB,
		redis: redisClient,
	}, nil
}

func (i *infra) close() error {
	if err := i.redis.Close(); err != nil {
		return err
	}
	return i.db.Close()
}
