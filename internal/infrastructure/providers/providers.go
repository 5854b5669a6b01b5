package providers

import (
	"context"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/totegamma/daybook/internal/config"
	"github.com/totegamma/daybook/internal/infrastructure/cache"
	"github.com/totegamma/daybook/internal/infrastructure/database"
	"github.com/totegamma/daybook/internal/infrastructure/gateway"
	"github.com/totegamma/daybook/internal/usecase"
)

// NewDatabase opens Postgres when a DSN is configured and falls back to a local SQLite file.
func NewDatabase(conf config.Server) (*gorm.DB, error) {
	if conf.PostgresDsn != "" {
		return database.NewPostgres(conf.PostgresDsn)
	}
	return database.NewSQLite(conf.SqlitePath)
}

// MigrateDatabase applies migrations for the application models.
func MigrateDatabase(db *gorm.DB) error {
	return database.Migrate(db)
}

// NewMemcache creates a memcache client.
func NewMemcache(addr string) *memcache.Client {
	return database.NewMemcached(addr)
}

// NewRedis returns nil when no redis address is configured.
func NewRedis(ctx context.Context, conf config.Server) (*redis.Client, error) {
	if conf.RedisAddr == "" {
		return nil, nil
	}
	return database.NewRedis(ctx, conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
}

// NewStatsCache prefers the shared memcached and keeps stats in process otherwise.
func NewStatsCache(conf config.Server) usecase.StatsCache {
	if conf.MemcachedAddr != "" {
		return cache.NewMemcached(NewMemcache(conf.MemcachedAddr))
	}
	return cache.NewLocal()
}

// NewBlobStore returns nil when no object store endpoint is configured, which disables attachments.
func NewBlobStore(ctx context.Context, conf config.Blob) (usecase.BlobStore, error) {
	if conf.Endpoint == "" {
		return nil, nil
	}
	blob, err := gateway.NewBlobGateway(ctx, gateway.BlobConfig{
		Endpoint:  conf.Endpoint,
		AccessKey: conf.AccessKey,
		SecretKey: conf.SecretKey,
		Bucket:    conf.Bucket,
		Secure:    conf.Secure,
		PublicURL: conf.PublicURL,
	})
	if err != nil {
		return nil, err
	}
	return blob, nil
}
