package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/domain"
)

// Repository implements the user, activity and recommendation stores against
// a shared pgx pool. All reads wrap failures in domain.ErrStoreUnavailable
// and writes in domain.ErrWriteFailed so the orchestrator can classify them.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrStoreUnavailable, op, err)
}

func writeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrWriteFailed, op, err)
}
