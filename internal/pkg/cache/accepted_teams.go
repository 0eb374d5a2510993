package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/yigit/hackathon/internal/app/models"
)

const (
	acceptedTeamsKey           = "hackathon:public:accepted-teams"
	acceptedTeamsGenerationKey = acceptedTeamsKey + ":generation"
)

// NoGeneration is returned by Get when the generation could not be read. Set ignores it.
const NoGeneration int64 = -1

// AcceptedTeamsCache caches the public accepted-teams projection.
// Entries are keyed by a generation counter that Invalidate advances, so a
// projection read before an invalidation is written under a key nobody reads.
// Errors are logged and reported as misses so callers fall through to the database.
type AcceptedTeamsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewAcceptedTeamsCache returns nil when client is nil
func NewAcceptedTeamsCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *AcceptedTeamsCache {
	if client == nil {
		return nil
	}
	return &AcceptedTeamsCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached projection and whether it was present. On a miss the
// returned generation must be handed to Set together with the fresh projection.
func (c *AcceptedTeamsCache) Get(ctx context.Context) ([]models.AcceptedTeam, int64, bool) {
	if c == nil {
		return nil, NoGeneration, false
	}

	gen, err := c.client.Get(ctx, acceptedTeamsGenerationKey).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		gen = 0
	case err != nil:
		c.logger.Warn().Err(err).Msg("Accepted teams cache generation read failed")
		return nil, NoGeneration, false
	}

	raw, err := c.client.Get(ctx, generationKey(gen)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Msg("Accepted teams cache read failed")
		}
		return nil, gen, false
	}

	var teams []models.AcceptedTeam
	if err := json.Unmarshal(raw, &teams); err != nil {
		c.logger.Warn().Err(err).Msg("Accepted teams cache entry is corrupt")
		return nil, gen, false
	}
	return teams, gen, true
}

// Set stores the projection read under gen for the configured TTL
func (c *AcceptedTeamsCache) Set(ctx context.Context, gen int64, teams []models.AcceptedTeam) {
	if c == nil || gen == NoGeneration {
		return
	}
	raw, err := json.Marshal(teams)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to encode accepted teams for cache")
		return
	}
	if err := c.client.Set(ctx, generationKey(gen), raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("Accepted teams cache write failed")
	}
}

// Invalidate advances the generation. Older entries expire with their TTL.
func (c *AcceptedTeamsCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Incr(ctx, acceptedTeamsGenerationKey).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("Accepted teams cache invalidation failed")
	}
}

func generationKey(gen int64) string {
	return acceptedTeamsKey + ":" + strconv.FormatInt(gen, 10)
}
