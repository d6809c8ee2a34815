package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	redisClient "facevote.io/infrastructure/database/connection/cache"
	"facevote.io/infrastructure/logger"
)

type RedisRepository struct {
	Client *redis.Client
}

// preRequest binds the shared connection on first use. It reports false when
// redis is not configured.
func (redisRepo *RedisRepository) preRequest() bool {
	if redisRepo.Client == nil {
		conn, err := redisClient.GetInstance()
		if err != nil {
			return false
		}
		redisRepo.Client = conn.Client
		logger.Info("redis repository initialisation complete")
	}
	return true
}

func (redisRepo *RedisRepository) CreateEntry(ctx context.Context, key string, payload interface{}, ttl time.Duration) bool {
	if !redisRepo.preRequest() {
		return false
	}
	_, err := redisRepo.Client.Set(ctx, key, payload, ttl).Result()
	if err != nil {
		logger.Error("redis error occured while running CreateEntry", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}

	logger.Debug("redis CreateEntry completed")
	return true
}

func (redisRepo *RedisRepository) FindOneByteArray(ctx context.Context, key string) *[]byte {
	if !redisRepo.preRequest() {
		return nil
	}
	result, err := redisRepo.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		logger.Error("redis error occured while running FindOneByteArray", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return nil
	}

	logger.Debug("redis FindOneByteArray completed")
	return &result
}

// CreateEntryIfAbsent stores payload only when key does not exist yet and
// reports whether it did.
func (redisRepo *RedisRepository) CreateEntryIfAbsent(ctx context.Context, key string, payload interface{}, ttl time.Duration) bool {
	if !redisRepo.preRequest() {
		return false
	}
	created, err := redisRepo.Client.SetNX(ctx, key, payload, ttl).Result()
	if err != nil {
		logger.Error("redis error occured while running CreateEntryIfAbsent", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}

	logger.Debug("redis CreateEntryIfAbsent completed")
	return created
}
