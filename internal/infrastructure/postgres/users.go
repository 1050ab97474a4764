package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/domain"
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return 500
	}
	if limit > 5000 {
		return 5000
	}
	return limit
}

// ListUserIDs pages the user population in (created_at, id) ASC order.
// cursor means "start after this user"; nil next cursor means exhausted.
func (r *Repository) ListUserIDs(ctx context.Context, limit int, cursor *domain.UserCursor) ([]uuid.UUID, *domain.UserCursor, error) {
	limit = clampLimit(limit)
	where := ""
	args := []any{}
	argN := 1

	if cursor != nil {
		where = fmt.Sprintf("WHERE (created_at, id) > ($%d, $%d)", argN, argN+1)
		args = append(args, cursor.CreatedAt, cursor.ID)
		argN += 2
	}

	q := fmt.Sprintf(`
		SELECT id, created_at
		FROM users
		%s
		ORDER BY created_at ASC, id ASC
		LIMIT %d
	`, where, limit+1)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, nil, storeErr("list users", err)
	}
	defer rows.Close()

	var page []domain.UserCursor
	for rows.Next() {
		var c domain.UserCursor
		if err := rows.Scan(&c.ID, &c.CreatedAt); err != nil {
			return nil, nil, storeErr("scan user", err)
		}
		page = append(page, c)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, storeErr("list users", err)
	}

	var next *domain.UserCursor
	if len(page) > limit {
		last := page[limit-1]
		next = &last
		page = page[:limit]
	}

	ids := make([]uuid.UUID, 0, len(page))
	for _, c := range page {
		ids = append(ids, c.ID)
	}
	return ids, next, nil
}
