package scoring

import (
	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/domain"
)

// ScoreSet accumulates per-recipe scores for one user within one run. It
// remembers the order recipes were first seen so the ranker can break score
// ties deterministically.
type ScoreSet struct {
	scores    map[string]int
	firstSeen map[string]int
	order     []string
}

func NewScoreSet() *ScoreSet {
	return &ScoreSet{
		scores:    make(map[string]int),
		firstSeen: make(map[string]int),
	}
}

// Add folds one event into the set. Events without a recipe target are
// ignored; unknown types insert the recipe with a zero contribution so the
// "touched but unweighted" case is observable.
func (s *ScoreSet) Add(ev domain.ActivityEvent, weights domain.ScoreWeights) {
	if ev.RecipeID == nil || *ev.RecipeID == "" {
		return
	}
	id := *ev.RecipeID
	if _, ok := s.scores[id]; !ok {
		s.scores[id] = 0
		s.firstSeen[id] = len(s.order)
		s.order = append(s.order, id)
	}
	s.scores[id] += weights.Weight(ev.Type)
}

// Len reports the number of distinct recipes seen.
func (s *ScoreSet) Len() int { return len(s.order) }

// Score returns the running total for a recipe and whether it was seen.
func (s *ScoreSet) Score(recipeID string) (int, bool) {
	v, ok := s.scores[recipeID]
	return v, ok
}

// Aggregate folds a complete event slice into a fresh ScoreSet. Addition is
// commutative, so the resulting scores do not depend on event order; only
// the tie-break order tracks first encounter.
func Aggregate(events []domain.ActivityEvent, weights domain.ScoreWeights) *ScoreSet {
	set := NewScoreSet()
	for _, ev := range events {
		set.Add(ev, weights)
	}
	return set
}
