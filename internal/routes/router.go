package routes

import (
	"net/http"
	"strings"
	"time"

	"buddhist-lent/pledgeboard/internal/api"
	"buddhist-lent/pledgeboard/internal/logging"
	"buddhist-lent/pledgeboard/internal/middleware"
	"buddhist-lent/pledgeboard/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the full HTTP handler from already initialised dependencies.
func NewRouter(deps *api.Dependencies, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/healthCheck", api.HealthCheckHandler(deps.DB, deps.Services.Cache, upSince))
	r.Handle("/metrics", promhttp.Handler())

	if local, ok := deps.Services.Uploader.Store().(*storage.LocalStore); ok {
		mountUploads(r, deps.Config.UploadURLPath, local.BaseDir())
	}

	RegisterAPIRoutes(r, api.NewHandlers(deps), deps)

	logging.Info("Router initialized", "cors_origins", deps.Config.CORSOrigins)
	return r
}

// mountUploads serves stored images. Directory listings are not exposed.
func mountUploads(r chi.Router, urlPath, dir string) {
	urlPath = "/" + strings.Trim(urlPath, "/")
	files := http.StripPrefix(urlPath, http.FileServer(http.Dir(dir)))

	r.Get(urlPath+"/*", func(w http.ResponseWriter, req *http.Request) {
		if strings.HasSuffix(req.URL.Path, "/") {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, req)
	})
}
