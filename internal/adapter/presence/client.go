package presence

import (
	"github.com/redis/go-redis/v9"

	"github.com/heartmarshall/hearme-backend/internal/config"
)

// NewClient creates the Redis client backing the presence store. It does not
// dial; the first command does.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}
