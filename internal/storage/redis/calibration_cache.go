package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/storage"
)

// DefaultKeyPrefix namespaces cache keys.
const DefaultKeyPrefix = "strategygate"

// CalibrationCache implements storage.CalibrationStore as a read-through
// cache in front of another CalibrationStore. Inserts go to the backing
// store first, then bump the venue's generation and drop its cached entry.
// A fill only lands if the generation it read before loading is unchanged,
// so a read racing an insert cannot re-cache the superseded calibration.
// Redis failures on read fall back to the backing store.
type CalibrationCache struct {
	client  *goredis.Client
	backing storage.CalibrationStore
	ttl     time.Duration
	prefix  string
}

// NewCalibrationCache creates a cache with the given TTL.
func NewCalibrationCache(client *goredis.Client, backing storage.CalibrationStore, ttl time.Duration) *CalibrationCache {
	return &CalibrationCache{
		client:  client,
		backing: backing,
		ttl:     ttl,
		prefix:  DefaultKeyPrefix,
	}
}

// Compile-time interface check.
var _ storage.CalibrationStore = (*CalibrationCache)(nil)

func (c *CalibrationCache) key(venue string) string {
	return c.prefix + ":calibration:latest:" + venue
}

func (c *CalibrationCache) genKey(venue string) string {
	return c.prefix + ":calibration:gen:" + venue
}

// Insert writes through to the backing store and invalidates the cached latest entry.
func (c *CalibrationCache) Insert(ctx context.Context, cal *domain.Calibration) error {
	if err := c.backing.Insert(ctx, cal); err != nil {
		return err
	}
	_, err := c.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Incr(ctx, c.genKey(cal.Venue))
		p.Del(ctx, c.key(cal.Venue))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate calibration cache: %w", err)
	}
	return nil
}

// GetLatest returns the cached latest calibration, loading it from the
// backing store on a miss.
func (c *CalibrationCache) GetLatest(ctx context.Context, venue string) (*domain.Calibration, error) {
	key := c.key(venue)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cal domain.Calibration
		if jsonErr := json.Unmarshal(data, &cal); jsonErr == nil {
			return &cal, nil
		}
		// corrupt entry: reload
	case errors.Is(err, goredis.Nil):
	default:
		return c.backing.GetLatest(ctx, venue)
	}

	gen, err := c.generation(ctx, c.client, venue)
	if err != nil {
		return c.backing.GetLatest(ctx, venue)
	}

	cal, err := c.backing.GetLatest(ctx, venue)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(cal); err == nil {
		_ = c.fill(ctx, venue, gen, data)
	}
	return cal, nil
}

// fill caches data unless an Insert bumped the generation since gen was read.
func (c *CalibrationCache) fill(ctx context.Context, venue string, gen int64, data []byte) error {
	genKey := c.genKey(venue)
	return c.client.Watch(ctx, func(tx *goredis.Tx) error {
		cur, err := c.generation(ctx, tx, venue)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(p goredis.Pipeliner) error {
			p.Set(ctx, c.key(venue), data, c.ttl)
			return nil
		})
		return err
	}, genKey)
}

var errStaleFill = errors.New("calibration changed during cache fill")

// getter is satisfied by both *goredis.Client and *goredis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

func (c *CalibrationCache) generation(ctx context.Context, r getter, venue string) (int64, error) {
	gen, err := r.Get(ctx, c.genKey(venue)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}
