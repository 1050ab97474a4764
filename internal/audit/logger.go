package audit

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/domain"
)

// Logger provides structured audit logging for batch runs
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// RunStarted logs the start of a batch run
func (l *Logger) RunStarted(runID uuid.UUID, topN, workers int) {
	l.log.Info().
		Str("action", "run_started").
		Str("run_id", runID.String()).
		Int("top_n", topN).
		Int("workers", workers).
		Msg("Batch run started")
}

// UserProcessed logs a successful per-user pipeline
func (l *Logger) UserProcessed(runID, userID uuid.UUID, recommended, scored, skipped int) {
	l.log.Info().
		Str("action", "user_processed").
		Str("run_id", runID.String()).
		Str("user_id", userID.String()).
		Int("recommended", recommended).
		Int("events_scored", scored).
		Int("events_skipped", skipped).
		Msg("User recommendations replaced")
}

// UserFailed logs a per-user failure; the batch continues past it
func (l *Logger) UserFailed(runID, userID uuid.UUID, err error) {
	l.log.Error().
		Str("action", "user_failed").
		Str("run_id", runID.String()).
		Str("user_id", userID.String()).
		Err(err).
		Msg("User processing failed")
}

// RunFinished logs the final batch summary
func (l *Logger) RunFinished(s domain.BatchSummary) {
	l.log.Info().
		Str("action", "run_finished").
		Str("run_id", s.RunID.String()).
		Int("succeeded", s.UsersProcessed).
		Int("failed", s.UsersFailed).
		Int("events_scored", s.EventsScored).
		Int("events_skipped", s.EventsSkipped).
		Dur("elapsed", s.FinishedAt.Sub(s.StartedAt)).
		Msgf("Batch run finished: %d succeeded, %d failed", s.UsersProcessed, s.UsersFailed)
}

// RunAborted logs a run that could not start at all
func (l *Logger) RunAborted(runID uuid.UUID, err error) {
	l.log.Error().
		Str("action", "run_aborted").
		Str("run_id", runID.String()).
		Err(err).
		Msg("Batch run aborted before user enumeration completed")
}
