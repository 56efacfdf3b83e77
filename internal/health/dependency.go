package health

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// probe adapts a named ping function to the Checker interface; both
// dependency checks share the error-to-result plumbing.
type probe struct {
	name string
	ping func(ctx context.Context) error
}

func (p probe) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: p.name, Healthy: true}
	if err := p.ping(ctx); err != nil {
		res.Healthy = false
		res.Error = err.Error()
	}
	return res
}

func NewDBChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return probe{name: "db", ping: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

// NewRedisChecker returns nil when Redis is not configured; the probe
// runner drops nil checkers.
func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return probe{name: "redis", ping: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}
