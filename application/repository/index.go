package repository

import (
	"facevote.io/infrastructure/config"
	"facevote.io/infrastructure/database/repository/cache"
	"facevote.io/infrastructure/logger"
)

// NewIdentityStore builds the configured store. Connections must already be
// established.
func NewIdentityStore(cfg *config.Config) IdentityStore {
	var store IdentityStore
	switch cfg.Database.Driver {
	case config.StoreMemory:
		store = NewMemoryIdentityStore()
	default:
		store = NewMongoIdentityStore(IdentityRepo())
	}

	if cfg.Redis.Enabled() {
		store = NewCachedIdentityStore(store, &cache.RedisRepository{}, cfg.Redis.CacheTTL)
	}

	logger.Info("identity store ready", logger.LoggerOptions{
		Key: "store",
		Data: map[string]interface{}{
			"driver": cfg.Database.Driver,
			"cached": cfg.Redis.Enabled(),
		},
	})
	return store
}
