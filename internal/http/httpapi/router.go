package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"oracle/internal/http/handlers"
	"oracle/internal/middleware"
)

// NewRouter builds the transport surface. rl may be nil to disable rate
// limiting (tests).
func NewRouter(app *handlers.App, rl *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
	)
	if rl != nil {
		r.Use(rl.Middleware)
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/oracle/ask", app.Ask)
		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/status", app.Status)
			r.Post("/upgrade", app.Upgrade)
		})
	})

	return r
}
