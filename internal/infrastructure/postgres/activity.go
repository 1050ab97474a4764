package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/domain"
)

const activityPageSize = 1000

// ForEachEvent streams one user's activity log in (occurred_at, id) ASC
// order, one keyset page at a time, so a long history never loads eagerly.
// Rows missing their type or timestamp are passed to fn wrapped in
// domain.ErrMalformedEvent; fn returning nil skips them.
//
// The sort key coalesces a NULL occurred_at to epoch: the schema forbids
// NULL timestamps, but if one ever appears the row still sorts
// deterministically and stays inside the keyset window instead of being
// silently dropped at a page boundary.
func (r *Repository) ForEachEvent(ctx context.Context, userID uuid.UUID, fn func(domain.ActivityEvent, error) error) error {
	var afterAt time.Time
	var afterID uuid.UUID
	first := true

	for {
		where := "WHERE user_id = $1"
		args := []any{userID}
		if !first {
			where += " AND (COALESCE(occurred_at, 'epoch'), id) > ($2, $3)"
			args = append(args, afterAt, afterID)
		}

		q := fmt.Sprintf(`
			SELECT id, user_id, recipe_id, event_type, query, occurred_at
			FROM activity_log
			%s
			ORDER BY COALESCE(occurred_at, 'epoch') ASC, id ASC
			LIMIT %d
		`, where, activityPageSize)

		n, lastAt, lastID, err := r.scanEventPage(ctx, q, args, fn)
		if err != nil {
			return err
		}
		if n < activityPageSize {
			return nil
		}
		afterAt, afterID = lastAt, lastID
		first = false
	}
}

func (r *Repository) scanEventPage(ctx context.Context, q string, args []any, fn func(domain.ActivityEvent, error) error) (int, time.Time, uuid.UUID, error) {
	var lastAt time.Time
	var lastID uuid.UUID

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return 0, lastAt, lastID, storeErr("list activity events", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var ev domain.ActivityEvent
		var evType *string
		var query *string
		var occurredAt *time.Time

		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.RecipeID, &evType, &query, &occurredAt); err != nil {
			return n, lastAt, lastID, storeErr("scan activity event", err)
		}
		n++

		// Keyset advances past malformed rows too, so a bad row cannot
		// wedge the scan. A missing timestamp cursors at epoch to match
		// the coalesced sort key.
		if occurredAt != nil {
			lastAt = *occurredAt
		} else {
			lastAt = time.Unix(0, 0).UTC()
		}
		lastID = ev.ID

		if evType == nil || *evType == "" || occurredAt == nil {
			if err := fn(domain.ActivityEvent{}, fmt.Errorf("%w: id=%s", domain.ErrMalformedEvent, ev.ID)); err != nil {
				return n, lastAt, lastID, err
			}
			continue
		}

		ev.Type = *evType
		ev.OccurredAt = *occurredAt
		if query != nil {
			ev.Query = *query
		}
		if err := fn(ev, nil); err != nil {
			return n, lastAt, lastID, err
		}
	}
	if err := rows.Err(); err != nil {
		return n, lastAt, lastID, storeErr("list activity events", err)
	}
	return n, lastAt, lastID, nil
}
