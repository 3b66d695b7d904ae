package delivery

import (
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

func RegisterRoutes(
	r chi.Router,
	hTools *ToolHandler,
	hProjects *ProjectHandler,
) {
	// --- tool surface ---
	r.Route("/tools", func(tr chi.Router) {
		tr.Use(
			httputil.RecoverMiddleware,
			httprate.LimitByIP(60, time.Minute),
		)

		tr.Get("/", hTools.ListTools)
		tr.Post("/{name}", hTools.InvokeTool)
	})

	// --- projects ---
	r.Route("/projects", func(pr chi.Router) {
		pr.Use(httputil.RecoverMiddleware)

		pr.Post("/", hProjects.Create)
		pr.Get("/", hProjects.List)
		pr.Get("/{project_id}", hProjects.Get)
		pr.Post("/{project_id}/upload", hProjects.Upload)
		pr.Post("/{project_id}/dub", hProjects.Start)
		pr.Get("/{project_id}/status", hProjects.Status)
		pr.Post("/{project_id}/wait", hProjects.Wait)
		pr.Post("/{project_id}/download", hProjects.Download)
		pr.Post("/{project_id}/share", hProjects.Share)
	})
}
