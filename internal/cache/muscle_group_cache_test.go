package cache_test

import (
	"context"
	"testing"
	"time"

	"alcyxob/workout-tracker/internal/cache"
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/repository/memory"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMuscleGroupCache_SetGetInvalidate(t *testing.T) {
	c := cache.NewMuscleGroupCache(1, time.Minute, nil)
	exerciseID := primitive.NewObjectID()
	groups := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}

	_, ok := c.Get(exerciseID)
	assert.False(t, ok)

	c.Set(exerciseID, groups)
	got, ok := c.Get(exerciseID)
	require.True(t, ok)
	assert.Equal(t, groups, got)

	c.Invalidate(exerciseID)
	_, ok = c.Get(exerciseID)
	assert.False(t, ok)
}

func TestMuscleGroupCache_EmptyGroupsAreCached(t *testing.T) {
	c := cache.NewMuscleGroupCache(1, time.Minute, nil)
	exerciseID := primitive.NewObjectID()

	c.Set(exerciseID, nil)
	got, ok := c.Get(exerciseID)
	require.True(t, ok)
	assert.Empty(t, got)
}

func TestMuscleGroupCache_Lookup(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewExerciseRepository()
	chest, triceps := primitive.NewObjectID(), primitive.NewObjectID()

	bench := &domain.Exercise{Name: "Bench press", MuscleGroupIDs: []primitive.ObjectID{chest, triceps}}
	benchID, err := repo.Create(ctx, bench)
	require.NoError(t, err)

	m := metrics.NewTestManager()
	c := cache.NewMuscleGroupCache(1, time.Minute, m)
	unknown := primitive.NewObjectID()

	lookup, err := c.Lookup(ctx, repo, []primitive.ObjectID{benchID, unknown, benchID})
	require.NoError(t, err)
	groups, ok := lookup(benchID)
	require.True(t, ok)
	assert.Equal(t, []primitive.ObjectID{chest, triceps}, groups)
	_, ok = lookup(unknown)
	assert.False(t, ok)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterLookupCacheMisses))

	// second round is served from the cache
	_, err = c.Lookup(ctx, repo, []primitive.ObjectID{benchID})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterLookupCacheHits))
}
