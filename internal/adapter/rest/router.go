package rest

import (
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the listing handlers, the metrics endpoint and the middleware stack.
func NewRouter(h *ListingHandler, m *metrics.MetricsManager, log *logger.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Tracing)
	r.Use(middleware.AccessLog(log.Named("HTTP")))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)

	r.Get("/", h.Home)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS)
		r.Use(chimw.Timeout(requestTimeout))

		r.Get("/health", h.Health)
		r.Route("/cars", func(r chi.Router) {
			r.Get("/", h.ListCars)
			r.Post("/", h.CreateCar)
			r.Get("/search", h.SearchCars)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetCar)
				r.Put("/", h.UpdateCar)
				r.Delete("/", h.DeleteCar)
				r.Post("/publish", h.PublishCar)
				r.Delete("/publish", h.UnpublishCar)
			})
		})
	})

	logRoutes(r, log)
	return r
}
