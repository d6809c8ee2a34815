package cache

import (
	"context"
	"errors"
	"time"

	"facevote.io/infrastructure/config"
	"facevote.io/infrastructure/logger"
	"github.com/redis/go-redis/v9"
)

var ErrCacheNotConfigured = errors.New("redis is not configured")

type RedisConnection struct {
	Client *redis.Client
}

var instance *RedisConnection

func ConnectToCache(cfg config.RedisConfig) {
	opt := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       0,
		PoolSize: 10,
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warning("redis did not respond to ping, identity cache will fall back to the store", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	} else {
		logger.Info("connected to redis successfully")
	}
	instance = &RedisConnection{Client: client}
}

func GetInstance() (*RedisConnection, error) {
	if instance == nil {
		return nil, ErrCacheNotConfigured
	}
	return instance, nil
}

func Close() error {
	if instance == nil {
		return nil
	}
	return instance.Client.Close()
}
