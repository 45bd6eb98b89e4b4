package main

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/cors"

	getexport "reports-ui/http-server/export/get"
	saveexport "reports-ui/http-server/export/save"
	savegroup "reports-ui/http-server/group/save"
	saveschedule "reports-ui/http-server/schedule/save"
	gettemplate "reports-ui/http-server/template/get"
	savetemplate "reports-ui/http-server/template/save"
	validatetemplate "reports-ui/http-server/template/validate"
	"reports-ui/internal/backend"
	"reports-ui/internal/config"
	"reports-ui/internal/middleware/session"
	"reports-ui/internal/service/export"
)

func routes(cfg config.Config, log *slog.Logger, client *backend.Client) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", session.UsernameHeader},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(session.Username())

	exportOpts := []export.Option{
		export.WithReadyDelay(cfg.ReportReadyDelay),
		export.WithReturnURL(cfg.ReturnURL),
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			render.JSON(w, r, map[string]string{"status": "ok"})
		})

		// template builder
		r.Get("/template-form", gettemplate.GetTemplateForm(log, client))
		r.Post("/template-form/validate", validatetemplate.ValidateTemplate(log, client))
		r.Post("/templates", savetemplate.SaveTemplate(log, client))
		r.Post("/groups", savegroup.SaveGroup(log, client))

		// export and scheduling
		r.Get("/export-form", getexport.GetExportForm(log, client, exportOpts...))
		r.Get("/export-form/range", getexport.GetRange(log, client, exportOpts...))
		r.Post("/exports", saveexport.SaveExport(log, client, exportOpts...))
		r.Post("/schedules", saveschedule.SaveSchedule(log, client, exportOpts...))
		r.Post("/schedules/{frequency}", saveschedule.SaveSchedule(log, client, exportOpts...))
	})

	if cfg.FrontendDir != "" {
		frontend(router, log, cfg.FrontendDir)
	}

	return router
}

// frontend serves the built browser bundle from dir, falling back to
// index.html for client-side routes.
func frontend(router chi.Router, log *slog.Logger, dir string) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Error("Frontend directory not found, serving the API only", slog.String("path", dir))
		return
	}

	fileServer := http.FileServer(http.Dir(dir))
	for _, prefix := range []string{"/assets/*", "/js/*", "/css/*", "/img/*"} {
		router.Handle(prefix, fileServer)
	}

	index := filepath.Join(dir, "index.html")
	router.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		p := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			http.ServeFile(w, r, p)
			return
		}
		http.ServeFile(w, r, index)
	})
}
