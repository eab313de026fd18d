package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.SetHeader("Content-Type", "application/json"))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		})

		r.Route("/stores", func(r chi.Router) {
			r.Get("/", s.handleListStores)
			r.Route("/{store}", func(r chi.Router) {
				r.Get("/", s.handleGetStore)
				r.Post("/reset", s.handleResetStore)
				r.Put("/keys/{key}", s.handleSetKey)
				r.Delete("/keys/{key}", s.handleRemoveKey)
			})
		})

		// ?stores=Debug,Widgets selects stores; absent selects all.
		r.Route("/backup", func(r chi.Router) {
			r.Get("/", s.handleExport)
			r.Post("/", s.handleImport)
		})

		r.Route("/gesture", func(r chi.Router) {
			r.Get("/points", s.handleListPoints)
			r.Post("/points", s.handleAddPoint)
			r.Delete("/points", s.handleResetPoints)
			r.Put("/points/{id}/angle", s.handleMovePoint)
			r.Put("/points/{id}/action", s.handleSetPointAction)
			r.Delete("/points/{id}", s.handleRemovePoint)
			r.Post("/circles/{circle}/separate", s.handleSeparate)
		})

		r.Route("/widgets", func(r chi.Router) {
			r.Get("/", s.handleListWidgets)
			r.Post("/", s.handleAddWidget)
			r.Delete("/", s.handleResetWidgets)
			r.Delete("/{id}", s.handleRemoveWidget)
			r.Post("/{id}/move", s.handleMoveWidget)
			r.Post("/{id}/resize", s.handleResizeWidget)
			r.Post("/{id}/up", s.handleRaiseWidget)
			r.Post("/{id}/down", s.handleLowerWidget)
		})
	})
}
