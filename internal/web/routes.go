package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/web/handlers"
)

// setupRoutes configures all API routes
func (s *Server) setupRoutes(deps Deps) {
	enroll := handlers.NewEnrollHandler(deps.Pipeline)
	recognize := handlers.NewRecognizeHandler(deps.Pipeline)
	identities := handlers.NewIdentitiesHandler(deps.Pipeline, deps.Identities, deps.Descriptors)
	attendance := handlers.NewAttendanceHandler(deps.Attendance)
	stats := handlers.NewStatsHandler(deps.Identities, deps.Descriptors, deps.Attendance, deps.Gallery, deps.Index)
	similar := handlers.NewSimilarHandler(deps.Descriptors, deps.Index)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)

		r.Route("/enroll", func(r chi.Router) {
			r.Post("/", enroll.Begin)
			r.Get("/", enroll.Status)
			r.Post("/sample", enroll.Sample)
			r.Post("/complete", enroll.Complete)
			r.Post("/cancel", enroll.Cancel)
		})

		r.Post("/recognize", recognize.Recognize)
		r.Post("/recognize/reset", recognize.Reset)
		r.Get("/recognize/session", recognize.Session)

		r.Route("/identities", func(r chi.Router) {
			r.Get("/", identities.List)
			r.Get("/{id}", identities.Get)
			r.Delete("/{id}", identities.Delete)
		})

		r.Get("/attendance", attendance.List)
		r.Get("/stats", stats.Stats)
		r.Post("/descriptors/similar", similar.FindSimilar)
	})
}
