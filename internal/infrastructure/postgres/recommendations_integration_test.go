//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/domain"
)

func TestReplace_ReturnsExactlyWrittenSet(t *testing.T) {
	repo, pool := setupRepo(t)
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID := uuid.New()
	oldRun := uuid.New()
	newRun := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	// prior run left a different set behind
	require.NoError(t, repo.Replace(ctx, userID, oldRun, []domain.RankedRecipe{
		{RecipeID: "stale-1", Score: 9},
		{RecipeID: "stale-2", Score: 4},
		{RecipeID: "kept", Score: 1},
	}, now.Add(-time.Hour)))

	require.NoError(t, repo.Replace(ctx, userID, newRun, []domain.RankedRecipe{
		{RecipeID: "kept", Score: 6},
		{RecipeID: "fresh", Score: 2},
	}, now))

	got, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 2, "no stale entries may survive the replace")

	assert.Equal(t, "kept", got[0].RecipeID)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 6, got[0].Score)
	assert.Equal(t, newRun, got[0].RunID)
	assert.Equal(t, "fresh", got[1].RecipeID)
	assert.Equal(t, 2, got[1].Rank)
}

func TestReplace_EmptySetWipesPrior(t *testing.T) {
	repo, pool := setupRepo(t)
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID := uuid.New()
	require.NoError(t, repo.Replace(ctx, userID, uuid.New(), []domain.RankedRecipe{
		{RecipeID: "r1", Score: 3},
	}, time.Now().UTC()))

	require.NoError(t, repo.Replace(ctx, userID, uuid.New(), nil, time.Now().UTC()))

	got, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReplace_FailureLeavesPriorIntact(t *testing.T) {
	repo, pool := setupRepo(t)
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID := uuid.New()
	require.NoError(t, repo.Replace(ctx, userID, uuid.New(), []domain.RankedRecipe{
		{RecipeID: "prior", Score: 3},
	}, time.Now().UTC()))

	// duplicate recipe IDs violate the (user_id, recipe_id) primary key,
	// so the insert fails and the tx rolls back
	err := repo.Replace(ctx, userID, uuid.New(), []domain.RankedRecipe{
		{RecipeID: "dup", Score: 2},
		{RecipeID: "dup", Score: 1},
	}, time.Now().UTC())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWriteFailed)

	got, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "prior", got[0].RecipeID)
}

func TestReplace_NegativeScoresPersist(t *testing.T) {
	repo, pool := setupRepo(t)
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID := uuid.New()
	require.NoError(t, repo.Replace(ctx, userID, uuid.New(), []domain.RankedRecipe{
		{RecipeID: "r1", Score: -3},
	}, time.Now().UTC()))

	got, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, -3, got[0].Score)
}
