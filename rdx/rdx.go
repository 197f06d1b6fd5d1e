package rdx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"campusexplorer/config"
	"campusexplorer/globals"
	"campusexplorer/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Connect opens a client and checks the server answers.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := conn.Ping(ctx).Err(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return conn, nil
}

// Cache holds building listings. Entries are namespaced by a generation
// counter; Invalidate bumps the counter so every older entry becomes
// unreachable at once and then ages out on its TTL.
type Cache struct {
	conn *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

func NewCache(conn *redis.Client, ttl time.Duration, log *zap.Logger) *Cache {
	return &Cache{conn: conn, ttl: ttl, log: log}
}

func (c *Cache) generation(ctx context.Context) (int64, error) {
	gen, err := c.conn.Get(ctx, globals.BuildingListPrefix+"gen").Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *Cache) key(gen int64, f models.BuildingFilter) string {
	return globals.BuildingListPrefix + strconv.FormatInt(gen, 10) + ":" + string(f.Category) + ":" + f.Text
}

// GetList misses on any Redis failure; the store is always the fallback.
// The generation it saw is returned even on a miss: a listing read from the
// store afterwards must be filed under that generation, never a later one,
// or a write that committed in between would be hidden until the TTL.
// A negative generation means the result must not be cached.
func (c *Cache) GetList(ctx context.Context, f models.BuildingFilter) ([]models.Building, int64, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		c.log.Warn("cache generation read failed", zap.Error(err))
		return nil, -1, false
	}
	data, err := c.conn.Get(ctx, c.key(gen, f)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache read failed", zap.Error(err))
		}
		return nil, gen, false
	}
	var list []models.Building
	if err := json.Unmarshal(data, &list); err != nil {
		c.log.Warn("cache entry corrupt", zap.Error(err))
		return nil, gen, false
	}
	return list, gen, true
}

// SetList stores list under gen, the generation GetList reported before the
// store was read. If Invalidate ran since, the entry is unreachable.
func (c *Cache) SetList(ctx context.Context, gen int64, f models.BuildingFilter, list []models.Building) {
	if gen < 0 {
		return
	}
	data, err := json.Marshal(list)
	if err != nil {
		c.log.Warn("cache encode failed", zap.Error(err))
		return
	}
	if err := c.conn.Set(ctx, c.key(gen, f), data, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", zap.Error(err))
	}
}

func (c *Cache) Invalidate(ctx context.Context) {
	if err := c.conn.Incr(ctx, globals.BuildingListPrefix+"gen").Err(); err != nil {
		c.log.Error("cache invalidation failed", zap.Error(err))
	}
}
