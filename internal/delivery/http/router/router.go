package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/backlink-reclaim/internal/delivery/http/handler"
	"github.com/user/backlink-reclaim/internal/delivery/http/middleware"
)

func New(h *handler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recover)
	r.Use(middleware.CORS)

	r.NotFound(h.HandleNotFound)
	r.MethodNotAllowed(h.HandleMethodNotAllowed)

	r.Get("/health", h.HandleHealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/scan", h.HandleScan)
	r.Route("/scans", func(r chi.Router) {
		r.Get("/", h.HandleListScans)
		r.Get("/{id}", h.HandleGetScan)
		r.Get("/{id}/export", h.HandleExportScan)
	})

	return r
}
