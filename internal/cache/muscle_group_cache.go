package cache

import (
	"context"
	"fmt"
	"time"

	"alcyxob/workout-tracker/internal/analytics"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const objectIDLen = len(primitive.ObjectID{})

// MuscleGroupCache keeps the exercise -> muscle groups mapping that the
// muscle group analytics need for every training they look at.
// Values are the group ids packed back to back.
type MuscleGroupCache struct {
	cache         *freecache.Cache
	expireSeconds int
	metrics       *metrics.Manager
}

func NewMuscleGroupCache(sizeMB int, ttl time.Duration, metricsManager *metrics.Manager) *MuscleGroupCache {
	megabyte := 1024 * 1024
	return &MuscleGroupCache{
		cache:         freecache.NewCache(sizeMB * megabyte),
		expireSeconds: int(ttl.Seconds()),
		metrics:       metricsManager,
	}
}

func (c *MuscleGroupCache) Get(exerciseID primitive.ObjectID) ([]primitive.ObjectID, bool) {
	raw, err := c.cache.Get(exerciseID[:])
	if err != nil {
		return nil, false
	}
	groups, err := unpack(raw)
	if err != nil {
		log.Errorf("corrupt muscle group cache entry for %s: %s", exerciseID.Hex(), err)
		c.cache.Del(exerciseID[:])
		return nil, false
	}
	return groups, true
}

func (c *MuscleGroupCache) Set(exerciseID primitive.ObjectID, groups []primitive.ObjectID) {
	if err := c.cache.Set(exerciseID[:], pack(groups), c.expireSeconds); err != nil {
		log.Warnf("failed to cache muscle groups for %s: %s", exerciseID.Hex(), err)
	}
}

// Invalidate drops a single exercise, e.g. after its muscle groups changed.
func (c *MuscleGroupCache) Invalidate(exerciseID primitive.ObjectID) {
	c.cache.Del(exerciseID[:])
}

func (c *MuscleGroupCache) Clear() {
	c.cache.Clear()
}

// Lookup resolves ids through the cache, loads the misses from repo in one
// call and returns an analytics.ExerciseLookup over the result. Exercises the
// repository does not know stay unknown to the lookup.
func (c *MuscleGroupCache) Lookup(ctx context.Context, repo repository.ExerciseRepository, ids []primitive.ObjectID) (lookup analytics.ExerciseLookup, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "muscleGroupCache.lookup")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	resolved := make(map[primitive.ObjectID][]primitive.ObjectID, len(ids))
	var missing []primitive.ObjectID
	for _, id := range ids {
		if _, done := resolved[id]; done {
			continue
		}
		if groups, ok := c.Get(id); ok {
			resolved[id] = groups
			c.countHit()
			continue
		}
		missing = append(missing, id)
		c.countMiss()
	}

	if len(missing) > 0 {
		exercises, err := repo.GetByIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("load exercises: %w", err)
		}
		for _, e := range exercises {
			resolved[e.ID] = e.MuscleGroupIDs
			c.Set(e.ID, e.MuscleGroupIDs)
		}
	}

	return func(exerciseID primitive.ObjectID) ([]primitive.ObjectID, bool) {
		groups, ok := resolved[exerciseID]
		return groups, ok
	}, nil
}

func (c *MuscleGroupCache) countHit() {
	if c.metrics != nil {
		c.metrics.CounterLookupCacheHits.Inc()
	}
}

func (c *MuscleGroupCache) countMiss() {
	if c.metrics != nil {
		c.metrics.CounterLookupCacheMisses.Inc()
	}
}

func pack(groups []primitive.ObjectID) []byte {
	out := make([]byte, 0, len(groups)*objectIDLen)
	for _, g := range groups {
		out = append(out, g[:]...)
	}
	return out
}

func unpack(raw []byte) ([]primitive.ObjectID, error) {
	if len(raw)%objectIDLen != 0 {
		return nil, fmt.Errorf("length %d is not a multiple of %d", len(raw), objectIDLen)
	}
	groups := make([]primitive.ObjectID, 0, len(raw)/objectIDLen)
	for i := 0; i < len(raw); i += objectIDLen {
		var id primitive.ObjectID
		copy(id[:], raw[i:i+objectIDLen])
		groups = append(groups, id)
	}
	return groups, nil
}
