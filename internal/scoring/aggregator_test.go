package scoring_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/domain"
	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/scoring"
)

func ptr(s string) *string { return &s }

func ev(evType string, recipeID *string) domain.ActivityEvent {
	return domain.ActivityEvent{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		RecipeID:   recipeID,
		Type:       evType,
		OccurredAt: time.Now(),
	}
}

func TestAggregate_Empty(t *testing.T) {
	set := scoring.Aggregate(nil, domain.DefaultScoreWeights())
	assert.Equal(t, 0, set.Len())
}

func TestAggregate_NilRecipeIDIgnored(t *testing.T) {
	events := []domain.ActivityEvent{
		ev(domain.EventAISearch, nil),
		ev(domain.EventSearch, nil),
		ev(domain.EventSave, ptr("")),
	}
	set := scoring.Aggregate(events, domain.DefaultScoreWeights())
	assert.Equal(t, 0, set.Len())
}

func TestAggregate_UnknownTypeContributesZero(t *testing.T) {
	events := []domain.ActivityEvent{
		ev("rate", ptr("r1")),
		ev("rate", ptr("r1")),
	}
	set := scoring.Aggregate(events, domain.DefaultScoreWeights())

	// recipe was touched, so the entry exists with score 0
	assert.Equal(t, 1, set.Len())
	score, ok := set.Score("r1")
	assert.True(t, ok)
	assert.Equal(t, 0, score)
}

func TestAggregate_WeightedScoring(t *testing.T) {
	// save r1, save r1, search r2 -> {r1: 6, r2: 2}
	events := []domain.ActivityEvent{
		ev(domain.EventSave, ptr("r1")),
		ev(domain.EventSave, ptr("r1")),
		ev(domain.EventSearch, ptr("r2")),
	}
	set := scoring.Aggregate(events, domain.DefaultScoreWeights())

	assert.Equal(t, 2, set.Len())
	s1, _ := set.Score("r1")
	s2, _ := set.Score("r2")
	assert.Equal(t, 6, s1)
	assert.Equal(t, 2, s2)
}

func TestAggregate_SaveThenRemoveNetsZero(t *testing.T) {
	events := []domain.ActivityEvent{
		ev(domain.EventRemove, ptr("r1")),
		ev(domain.EventSave, ptr("r1")),
	}
	set := scoring.Aggregate(events, domain.DefaultScoreWeights())

	score, ok := set.Score("r1")
	assert.True(t, ok)
	assert.Equal(t, 0, score)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	base := []domain.ActivityEvent{
		ev(domain.EventSave, ptr("r1")),
		ev(domain.EventSave, ptr("r2")),
		ev(domain.EventRemove, ptr("r1")),
		ev(domain.EventSearch, ptr("r3")),
		ev(domain.EventAISearch, ptr("r2")),
		ev(domain.EventSearch, ptr("r1")),
	}
	weights := domain.DefaultScoreWeights()
	want := scoring.Aggregate(base, weights)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]domain.ActivityEvent, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := scoring.Aggregate(shuffled, weights)
		assert.Equal(t, want.Len(), got.Len())
		for _, id := range []string{"r1", "r2", "r3"} {
			ws, _ := want.Score(id)
			gs, _ := got.Score(id)
			assert.Equal(t, ws, gs, "score for %s differs under shuffle", id)
		}
	}
}

func TestAggregate_CustomWeights(t *testing.T) {
	events := []domain.ActivityEvent{
		ev(domain.EventSave, ptr("r1")),
		ev(domain.EventSearch, ptr("r1")),
	}
	set := scoring.Aggregate(events, domain.ScoreWeights{domain.EventSave: 10})

	// search is absent from the custom table, so it contributes 0
	score, _ := set.Score("r1")
	assert.Equal(t, 10, score)
}
