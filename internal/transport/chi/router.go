package chi

import (
	"github.com/go-chi/chi/v5"
)

// Register mounts every API route on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.Health)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/inbox/upload", s.InboxUpload)
		r.Post("/inbox/scan", s.InboxScan)
		r.Get("/inbox/items", s.InboxItems)

		r.Post("/audio/process", s.AudioProcess)
		r.Post("/audio/relabel", s.AudioRelabel)
		r.Post("/asr/test", s.ASRTest)

		r.Get("/library/summary", s.LibrarySummary)
		r.Get("/library/takes", s.LibraryTakes)

		r.Post("/teacher/parse", s.TeacherParse)
		r.Post("/daily/build", s.DailyBuild)

		r.Get("/config/mappings", s.MappingsGet)
		r.Put("/config/mappings", s.MappingsPut)
	})
}
