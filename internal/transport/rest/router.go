package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/metrics"
	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/security"
)

type RouterDeps struct {
	Handler  *Handler
	Verifier security.OperatorVerifier
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Handler == nil {
		panic("rest.NewRouter: nil handler")
	}
	if d.Verifier == nil {
		panic("rest.NewRouter: nil verifier")
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", d.Handler.Healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/internal", func(r chi.Router) {
		r.Use(AuthMiddleware(d.Verifier))
		r.Post("/run", d.Handler.TriggerRun)
	})

	return r
}
