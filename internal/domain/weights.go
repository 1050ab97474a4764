package domain

// ScoreWeights maps an event type to its score contribution. Types absent
// from the table contribute 0. The table is read-only for the lifetime of a
// run and safe to share across workers.
type ScoreWeights map[string]int

// DefaultScoreWeights returns the production tuning. Remove carries the same
// magnitude as save so a save followed by a remove nets to zero.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		EventSave:     3,
		EventRemove:   -3,
		EventSearch:   2,
		EventAISearch: 1,
	}
}

// Weight returns the contribution for an event type, 0 for unknown types.
func (w ScoreWeights) Weight(eventType string) int {
	return w[eventType]
}
