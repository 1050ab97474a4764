package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Activity event types recorded by the web tier.
const (
	EventSave     = "save"
	EventRemove   = "remove"
	EventSearch   = "search"
	EventAISearch = "ai_search"
)

var (
	ErrStoreUnavailable = errors.New("activity store unavailable")
	ErrWriteFailed      = errors.New("recommendation write failed")
	ErrMalformedEvent   = errors.New("malformed activity event")

	ErrUserLocked    = errors.New("user run lock held")
	ErrRunInProgress = errors.New("batch run already in progress")
)

// ActivityEvent is one recorded user interaction. RecipeID is nil for
// query-only searches; those contribute nothing to scoring.
type ActivityEvent struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	RecipeID   *string
	Type       string
	Query      string
	OccurredAt time.Time
}

// Recommendation is one persisted ranked entry for a user. Rank is 1-based
// within the user's current set.
type Recommendation struct {
	UserID      uuid.UUID
	RecipeID    string
	Rank        int
	Score       int
	RunID       uuid.UUID
	GeneratedAt time.Time
}

// RankedRecipe is the in-memory (recipeID, score) pair the ranker emits.
type RankedRecipe struct {
	RecipeID string
	Score    int
}

// BatchSummary reports one full pass over the user population.
type BatchSummary struct {
	RunID          uuid.UUID
	UsersProcessed int
	UsersFailed    int
	EventsScored   int
	EventsSkipped  int
	StartedAt      time.Time
	FinishedAt     time.Time
}

type UserCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// UserRepository enumerates the known user population.
type UserRepository interface {
	// ListUserIDs returns one keyset page of user IDs ordered by
	// (created_at, id) ascending, plus the cursor for the next page (nil
	// when exhausted).
	ListUserIDs(ctx context.Context, limit int, cursor *UserCursor) ([]uuid.UUID, *UserCursor, error)
}

// ActivityRepository reads a user's activity log.
type ActivityRepository interface {
	// ForEachEvent streams the user's events page by page in
	// (occurred_at, id) ascending order. A malformed row is passed to fn
	// wrapped in ErrMalformedEvent with a zero-value event; fn decides
	// whether to skip or abort. Any other error aborts the scan.
	ForEachEvent(ctx context.Context, userID uuid.UUID, fn func(ActivityEvent, error) error) error
}

// RecommendationRepository owns the persisted recommendation sets.
type RecommendationRepository interface {
	// Replace swaps the user's entire recommendation set for ranked in a
	// single transaction. On error the prior set is intact and the error
	// wraps ErrWriteFailed.
	Replace(ctx context.Context, userID, runID uuid.UUID, ranked []RankedRecipe, generatedAt time.Time) error

	// ListByUser returns the user's current set ordered by rank.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Recommendation, error)
}

// CacheRepository is the web tier's recommendation cache plus the per-user
// run lock that keeps overlapping batches single-writer-per-user.
type CacheRepository interface {
	InvalidateUser(ctx context.Context, userID uuid.UUID) error
	AcquireRunLock(ctx context.Context, userID uuid.UUID, ttl time.Duration) (bool, error)
	ReleaseRunLock(ctx context.Context, userID uuid.UUID) error
}

// EventPublisher notifies downstream consumers that a user's set changed.
type EventPublisher interface {
	RecommendationsUpdated(ctx context.Context, runID, userID uuid.UUID, count int) error
}
