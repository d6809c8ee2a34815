package connection

import (
	"facevote.io/infrastructure/config"
	"facevote.io/infrastructure/database/connection/cache"
	"facevote.io/infrastructure/database/connection/datastore"
)

// ConnectToDatabase connects mongo when it backs the identity store or the
// audit log, and redis when an address is configured.
func ConnectToDatabase(cfg *config.Config) error {
	if cfg.Database.Driver == config.StoreMongo || cfg.AuditQueue {
		if err := datastore.ConnectToDatabase(cfg.Database); err != nil {
			return err
		}
	}
	if cfg.Redis.Enabled() {
		cache.ConnectToCache(cfg.Redis)
	}
	return nil
}
