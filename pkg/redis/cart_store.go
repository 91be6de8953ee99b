package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/storefront-backend/pkg/cart"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/metrics"
)

const cartKeyPrefix = "storefront:cart:"

// CartStore keeps cart sessions as JSON values that expire after ttl of
// inactivity.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl, now: time.Now}
}

func cartKey(id string) string { return cartKeyPrefix + id }

func (s *CartStore) Load(ctx context.Context, id string) (cart.Session, error) {
	raw, err := s.client.Get(ctx, cartKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return cart.Session{}, cart.ErrSessionNotFound
	}
	if err != nil {
		logger.Error("Failed to load cart session from Redis", err, map[string]interface{}{
			"session_id": id,
		})
		return cart.Session{}, err
	}
	metrics.CacheHits.WithLabelValues("redis").Inc()

	var session cart.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		logger.Error("Failed to decode cart session from Redis", err, map[string]interface{}{
			"session_id": id,
		})
		return cart.Session{}, err
	}
	return session, nil
}

func (s *CartStore) Save(ctx context.Context, session cart.Session) error {
	session.UpdatedAt = s.now()
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, cartKey(session.ID), raw, s.ttl).Err(); err != nil {
		logger.Error("Failed to save cart session to Redis", err, map[string]interface{}{
			"session_id": session.ID,
		})
		return err
	}
	return nil
}

func (s *CartStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, cartKey(id)).Err(); err != nil {
		logger.Error("Failed to delete cart session from Redis", err, map[string]interface{}{
			"session_id": id,
		})
		return err
	}
	return nil
}

// PurgeOlderThan is a no-op; Redis expires idle sessions through their TTL.
func (s *CartStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}
