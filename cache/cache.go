// Package cache provides snapshot caches for launcher settings stores.
// Misses and expired entries are reported as launcherprefs.ErrNotFound.
package cache

import (
	"fmt"

	"github.com/CreativeUnicorns/launcherprefs"
)

var (
	_ launcherprefs.Cache = (*MemoryCache)(nil)
	_ launcherprefs.Cache = (*RedisCache)(nil)
)

// Drivers accepted by Open.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// RedisOptions configures the Redis driver of Open.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// Open returns the cache named by driver, or nil for DriverNone.
func Open(driver string, ro RedisOptions) (launcherprefs.Cache, error) {
	switch driver {
	case DriverNone, "":
		return nil, nil
	case DriverMemory:
		return NewMemoryCache(), nil
	case DriverRedis:
		return NewRedisCache(ro.Addr, ro.Password, ro.DB)
	default:
		return nil, fmt.Errorf("%w: unknown cache driver %q", launcherprefs.ErrInvalidInput, driver)
	}
}
