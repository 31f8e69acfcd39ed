package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/tierlink/backend/internal/models"
)

const teamKeyPrefix = "team:"

// TeamCache caches team-breakdown responses in Redis. The downline walk fans
// out one query per discovered member, so busy referrers get expensive to
// recompute; a short TTL plus invalidation on registration keeps the cache
// honest. A nil *TeamCache is valid and disables caching.
type TeamCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTeamCache creates a new team cache backed by the given Redis client
func NewTeamCache(client *redis.Client, ttl time.Duration) *TeamCache {
	return &TeamCache{client: client, ttl: ttl}
}

// Get returns the cached breakdown for a user, if present
func (c *TeamCache) Get(ctx context.Context, userID uuid.UUID) (*models.TeamBreakdown, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, teamKeyPrefix+userID.String()).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("team cache get failed: %v", err)
		}
		return nil, false
	}
	var team models.TeamBreakdown
	if err := json.Unmarshal(data, &team); err != nil {
		log.Printf("team cache entry corrupt for %s: %v", userID, err)
		return nil, false
	}
	return &team, true
}

// Set stores a breakdown for a user. Failures are logged, never surfaced.
func (c *TeamCache) Set(ctx context.Context, userID uuid.UUID, team *models.TeamBreakdown) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(team)
	if err != nil {
		log.Printf("team cache marshal failed: %v", err)
		return
	}
	if err := c.client.Set(ctx, teamKeyPrefix+userID.String(), data, c.ttl).Err(); err != nil {
		log.Printf("team cache set failed: %v", err)
	}
}

// Invalidate drops the cached breakdown for a user
func (c *TeamCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, teamKeyPrefix+userID.String()).Err(); err != nil {
		log.Printf("team cache invalidate failed: %v", err)
	}
}
