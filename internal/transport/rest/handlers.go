package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/domain"
)

// BatchRunner is the slice of the recommendation service the trigger
// endpoint needs. The service owns the single-flight guard, so a scheduled
// run and a triggered run can never overlap.
type BatchRunner interface {
	Run(ctx context.Context) (domain.BatchSummary, error)
	InFlight() bool
}

type Handler struct {
	runner BatchRunner
	log    zerolog.Logger
}

func NewHandler(runner BatchRunner, log zerolog.Logger) *Handler {
	return &Handler{runner: runner, log: log}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// TriggerRun starts a batch run in the background. Overlapping triggers get
// 409; the guard itself lives in the runner, so a trigger racing a scheduled
// run past this check still gets turned away there.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	if h.runner.InFlight() {
		writeFail(w, http.StatusConflict, "run_in_progress", "a batch run is already in flight")
		return
	}

	go func() {
		// detach from the request context; the run outlives the response
		if _, err := h.runner.Run(context.WithoutCancel(r.Context())); err != nil {
			if errors.Is(err, domain.ErrRunInProgress) {
				h.log.Warn().Msg("trigger lost the race to an in-flight run")
				return
			}
			h.log.Error().Err(err).Msg("triggered batch run aborted")
		}
	}()

	writeData(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
