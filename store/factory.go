package store

import (
	"context"
	"fmt"

	"github.com/rushteam/brewrec/core"
)

// CatalogWriter 是目录数据的写接口，供种子数据导入和测试使用。
type CatalogWriter interface {
	AddPost(ctx context.Context, p core.Post, tags ...string) error
	AddBar(ctx context.Context, b core.Bar) error
	AddBeverage(ctx context.Context, b core.Beverage) error
}

// Repository 是可读写的完整存储。
type Repository interface {
	core.Repository
	CatalogWriter
}

// 存储驱动名称
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// OpenRepository 按驱动名称打开存储。
func OpenRepository(ctx context.Context, driver, dsn string) (Repository, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryRepository(), nil
	case DriverSQLite:
		if dsn == "" {
			dsn = ":memory:"
		}
		return OpenSQLite(ctx, dsn)
	default:
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported, fmt.Sprintf("unknown store driver %q", driver))
	}
}

// OpenKeyValue 打开键值存储：redisAddr 为空时使用内存实现，否则使用带熔断的 Redis。
func OpenKeyValue(ctx context.Context, redisAddr string, db int) (core.KeyValueStore, error) {
	if redisAddr == "" {
		return NewMemoryStore(), nil
	}
	rs, err := NewRedisStore(ctx, redisAddr, db)
	if err != nil {
		return nil, err
	}
	return NewBreakerStore(rs, DefaultBreakerConfig("redis")), nil
}
