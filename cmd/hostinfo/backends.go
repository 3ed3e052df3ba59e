package main

import (
	"context"
	"database/sql"
	"time"

	redisCache "github.com/dreschagin/hostinfo/internal/infrastructure/cache/redis"
	dynamodbRepo "github.com/dreschagin/hostinfo/internal/infrastructure/persistence/dynamodb"
	"github.com/dreschagin/hostinfo/internal/infrastructure/persistence/postgres"
	"github.com/dreschagin/hostinfo/pkg/config"
	"github.com/dreschagin/hostinfo/pkg/logger"

	_ "github.com/lib/pq"
)

// openRedis подключает кеш последних документов; nil если Redis недоступен
func openRedis(redisCfg config.RedisConfig, log *logger.Logger) *redisCache.DocumentCache {
	cache, err := redisCache.NewDocumentCache(redisCache.Config{
		Addr:      redisCfg.Addr,
		Password:  redisCfg.Password,
		DB:        redisCfg.DB,
		KeyPrefix: redisCfg.KeyPrefix,
		TTL:       redisCfg.TTL,
	})
	if err != nil {
		log.Warn("Failed to connect to Redis, continuing without cache", "error", err.Error())
		return nil
	}

	log.Info("Redis cache initialized", "addr", redisCfg.Addr)
	return cache
}

// openPostgres подключает архив документов и готовит схему; nil если база недоступна
func openPostgres(ctx context.Context, dbCfg config.DatabaseConfig, log *logger.Logger) *postgres.PostgresDocumentRepository {
	db, err := sql.Open("postgres", dbCfg.DSN())
	if err != nil {
		log.Warn("Failed to open database", "error", err.Error())
		return nil
	}

	db.SetMaxOpenConns(dbCfg.MaxOpenConns)
	db.SetMaxIdleConns(dbCfg.MaxIdleConns)
	db.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Warn("Failed to ping database, continuing without archive", "error", err.Error())
		_ = db.Close()
		return nil
	}

	repo := postgres.NewPostgresDocumentRepository(db)
	if err := repo.EnsureSchema(pingCtx); err != nil {
		log.Warn("Failed to prepare database schema", "error", err.Error())
		_ = db.Close()
		return nil
	}

	log.Info("PostgreSQL archive connected")
	return repo
}

// openDynamo подключает индекс запусков; nil при ошибке инициализации
func openDynamo(ctx context.Context, dynamoCfg config.DynamoConfig, log *logger.Logger) *dynamodbRepo.RunRepository {
	repo, err := dynamodbRepo.NewRunRepository(ctx, dynamodbRepo.Config{
		TableName:       dynamoCfg.TableRuns,
		Region:          dynamoCfg.Region,
		Endpoint:        dynamoCfg.Endpoint,
		AccessKeyID:     dynamoCfg.AccessKeyID,
		SecretAccessKey: dynamoCfg.SecretAccessKey,
		TTLDays:         dynamoCfg.TTLDays,
	})
	if err != nil {
		log.Warn("Failed to initialize DynamoDB run index", "error", err.Error())
		return nil
	}
	return repo
}
