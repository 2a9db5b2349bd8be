package namedinsured

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/certdesk/certdesk/pkg/logger"
	"github.com/certdesk/certdesk/pkg/metrics"
)

// Cached keeps found records in Redis under "<prefix><accountID>" for ttl.
// Misses are not cached so a record created in the CRM shows up on the next render.
type Cached struct {
	src    Source
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCached(src Source, client *redis.Client, prefix string, ttl time.Duration) *Cached {
	if prefix == "" {
		prefix = "named_insured:"
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cached{src: src, client: client, prefix: prefix, ttl: ttl}
}

func (c *Cached) Lookup(ctx context.Context, accountID string) *NamedInsured {
	key := c.prefix + accountID
	b, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var ni NamedInsured
		if jerr := json.Unmarshal(b, &ni); jerr == nil {
			metrics.NamedInsuredLookups.WithLabelValues("cached").Inc()
			return &ni
		}
		_ = c.client.Del(ctx, key).Err()
	case !errors.Is(err, redis.Nil):
		logger.Warnf("named insured cache read for %s: %v", accountID, err)
	}

	ni := c.src.Lookup(ctx, accountID)
	if ni == nil {
		return nil
	}
	if b, err := json.Marshal(ni); err == nil {
		if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
			logger.Warnf("named insured cache write for %s: %v", accountID, err)
		}
	}
	return ni
}
