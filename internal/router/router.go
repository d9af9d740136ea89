package router

import (
	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/OxiDB/OxiStory/internal/auth"
	"github.com/parisxmas/OxiDB/OxiStory/internal/handler"
	mw "github.com/parisxmas/OxiDB/OxiStory/internal/middleware"
)

func New(
	jwtSecret string,
	authH *handler.AuthHandler,
	intakeH *handler.IntakeHandler,
	subH *handler.SubmissionHandler,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", authH.Login)
		r.Get("/catalog", handler.Catalog)
		r.Get("/files/*", subH.File)

		r.Post("/intake", intakeH.Start)
		r.Route("/intake/{sid}", func(r chi.Router) {
			r.Get("/", intakeH.View)
			r.Delete("/", intakeH.Abandon)
			r.Put("/answers/{field}", intakeH.Answer)
			r.Post("/next", intakeH.Next)
			r.Post("/previous", intakeH.Previous)
			r.Post("/photos", intakeH.AddPhoto)
			r.Patch("/photos/{index}", intakeH.UpdatePhoto)
			r.Delete("/photos/{index}", intakeH.RemovePhoto)
			r.Get("/previews/{pid}", intakeH.Preview)
			r.Post("/submit", intakeH.Submit)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(jwtSecret))

			r.Get("/admin/dashboard", subH.Dashboard)

			r.Get("/admin/submissions", subH.List)
			r.Get("/admin/submissions/{id}", subH.Get)
			r.Delete("/admin/submissions/{id}", subH.Delete)
			r.Put("/admin/submissions/{id}/status", subH.UpdateStatus)
			r.Put("/admin/submissions/{id}/notes", subH.UpdateNotes)
			r.Get("/admin/submissions/{id}/photos.zip", subH.Archive)
			r.Post("/admin/submissions/{id}/organize", subH.Organize)
		})
	})

	return r
}
