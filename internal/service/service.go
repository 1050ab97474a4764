package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/audit"
	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/domain"
	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/metrics"
	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/scoring"
)

// Options tunes one batch run. Weights and TopN live here rather than in the
// scoring package so a run can be re-tuned without a code change.
type Options struct {
	TopN        int
	Weights     domain.ScoreWeights
	Workers     int
	UserTimeout time.Duration
	PageSize    int
	RunLockTTL  time.Duration
}

// RecommendationService sequences Reader -> Aggregator -> Ranker -> Writer
// per user and iterates the whole user population per run. Cache and
// publisher are optional collaborators; a nil value disables that concern.
type RecommendationService struct {
	users  domain.UserRepository
	events domain.ActivityRepository
	recs   domain.RecommendationRepository
	cache  domain.CacheRepository
	pub    domain.EventPublisher
	audit  *audit.Logger
	opts   Options

	running atomic.Bool
	now     func() time.Time
}

func New(users domain.UserRepository, events domain.ActivityRepository, recs domain.RecommendationRepository, cache domain.CacheRepository, pub domain.EventPublisher, auditLog *audit.Logger, opts Options) *RecommendationService {
	if opts.Weights == nil {
		opts.Weights = domain.DefaultScoreWeights()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 500
	}
	return &RecommendationService{
		users:  users,
		events: events,
		recs:   recs,
		cache:  cache,
		pub:    pub,
		audit:  auditLog,
		opts:   opts,
		now:    time.Now,
	}
}

type userResult struct {
	recommended int
	scored      int
	skipped     int
}

// InFlight reports whether a run is currently executing.
func (s *RecommendationService) InFlight() bool {
	return s.running.Load()
}

// Run performs one full pass over all users. At most one run executes at a
// time regardless of how it was started; a concurrent call returns
// domain.ErrRunInProgress immediately. A per-user failure is logged and
// counted but never aborts the batch; the returned error is otherwise
// non-nil only when user enumeration itself cannot complete.
func (s *RecommendationService) Run(ctx context.Context) (domain.BatchSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return domain.BatchSummary{}, domain.ErrRunInProgress
	}
	defer s.running.Store(false)

	started := s.now()
	summary := domain.BatchSummary{
		RunID:     uuid.New(),
		StartedAt: started,
	}
	s.audit.RunStarted(summary.RunID, s.opts.TopN, s.opts.Workers)

	var mu sync.Mutex
	pool := newWorkerPool(s.opts.Workers)

	var cursor *domain.UserCursor
	var enumErr error
	for {
		ids, next, err := s.users.ListUserIDs(ctx, s.opts.PageSize, cursor)
		if err != nil {
			enumErr = err
			break
		}
		for _, userID := range ids {
			userID := userID
			pool.Submit(func() {
				res, err := s.processUser(ctx, summary.RunID, userID)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					summary.UsersFailed++
					s.audit.UserFailed(summary.RunID, userID, err)
					return
				}
				summary.UsersProcessed++
				summary.EventsScored += res.scored
				summary.EventsSkipped += res.skipped
				s.audit.UserProcessed(summary.RunID, userID, res.recommended, res.scored, res.skipped)
			})
		}
		if next == nil {
			break
		}
		cursor = next
	}

	pool.Wait()
	summary.FinishedAt = s.now()

	if enumErr != nil {
		s.audit.RunAborted(summary.RunID, enumErr)
		metrics.RecordBatchRun("aborted", summary.FinishedAt.Sub(summary.StartedAt))
		return summary, enumErr
	}

	s.audit.RunFinished(summary)
	metrics.RecordBatchRun("completed", summary.FinishedAt.Sub(summary.StartedAt))
	return summary, nil
}

// processUser runs the full pipeline for one user under its own timeout.
func (s *RecommendationService) processUser(ctx context.Context, runID, userID uuid.UUID) (userResult, error) {
	start := s.now()
	if s.opts.UserTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.UserTimeout)
		defer cancel()
	}

	if s.cache != nil {
		ok, err := s.cache.AcquireRunLock(ctx, userID, s.opts.RunLockTTL)
		if err == nil && !ok {
			metrics.RecordUserProcessed("locked", s.now().Sub(start))
			return userResult{}, domain.ErrUserLocked
		}
		// Redis being down never blocks the batch; the store write is
		// still transactional per user.
		if err == nil {
			defer func() { _ = s.cache.ReleaseRunLock(context.WithoutCancel(ctx), userID) }()
		}
	}

	res, err := s.rebuildUser(ctx, runID, userID)
	if err != nil {
		metrics.RecordUserProcessed("failed", s.now().Sub(start))
		return userResult{}, err
	}

	metrics.RecordUserProcessed("succeeded", s.now().Sub(start))
	metrics.RecordEventsScored(res.scored)
	metrics.RecordEventsSkipped(res.skipped)
	return res, nil
}

func (s *RecommendationService) rebuildUser(ctx context.Context, runID, userID uuid.UUID) (userResult, error) {
	var res userResult
	set := scoring.NewScoreSet()

	err := s.events.ForEachEvent(ctx, userID, func(ev domain.ActivityEvent, evErr error) error {
		if evErr != nil {
			// lenient: skip the single malformed event
			if errors.Is(evErr, domain.ErrMalformedEvent) {
				res.skipped++
				return nil
			}
			return evErr
		}
		set.Add(ev, s.opts.Weights)
		res.scored++
		return nil
	})
	if err != nil {
		return userResult{}, err
	}

	ranked := scoring.Rank(set, s.opts.TopN)
	res.recommended = len(ranked)

	if err := s.recs.Replace(ctx, userID, runID, ranked, s.now().UTC()); err != nil {
		return userResult{}, err
	}

	// Post-commit effects are best-effort; the replace already happened.
	if s.cache != nil {
		_ = s.cache.InvalidateUser(ctx, userID)
	}
	if s.pub != nil {
		_ = s.pub.RecommendationsUpdated(ctx, runID, userID, len(ranked))
	}
	return res, nil
}
