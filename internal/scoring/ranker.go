package scoring

import (
	"sort"

	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/domain"
)

// Rank orders a ScoreSet by score descending and truncates to topN.
// Ties are broken by first-seen order (the earlier-encountered recipe wins),
// which keeps output reproducible for a given event stream. topN <= 0 yields
// an empty slice. Negative scores are retained: a removed recipe can still
// rank if other signals offset the removal.
func Rank(set *ScoreSet, topN int) []domain.RankedRecipe {
	if set == nil || topN <= 0 || set.Len() == 0 {
		return nil
	}

	ranked := make([]domain.RankedRecipe, 0, set.Len())
	for _, id := range set.order {
		ranked = append(ranked, domain.RankedRecipe{RecipeID: id, Score: set.scores[id]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return set.firstSeen[ranked[i].RecipeID] < set.firstSeen[ranked[j].RecipeID]
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
