// Package routes maps URLs onto controllers.
package routes

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"portfolio/app/controllers"
	"portfolio/app/metrics"
	"portfolio/app/middleware"

	"github.com/gorilla/mux"
)

// Options carries the settings the router needs beyond the controllers.
type Options struct {
	StaticDir string
	MediaDir  string
	// Limiter throttles comment submissions. Nil disables throttling.
	Limiter *middleware.IPLimiter
}

// Setup defines the application's routes and returns a router.
func Setup(deps controllers.Dependencies, opts Options) *mux.Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)

	// Apply global middleware
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics)

	postController := controllers.NewPostController(deps)
	savedController := controllers.NewSavedController(deps)

	withSession := deps.Sessions.Handler
	throttled := func(h http.HandlerFunc) http.Handler {
		return middleware.RateLimit(opts.Limiter, logger)(withSession(h))
	}

	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Serve static files
	if opts.StaticDir != "" {
		router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}
	if opts.MediaDir != "" {
		router.PathPrefix("/media/").Handler(http.StripPrefix("/media/", http.FileServer(http.Dir(opts.MediaDir))))
	}

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)

	api.HandleFunc("/posts", postController.Index).Methods("GET")
	api.HandleFunc("/posts/{slug}", postController.Show).Methods("GET")
	api.Handle("/posts/{slug}/comments", throttled(postController.Comment)).Methods("POST")
	api.HandleFunc("/tags", postController.Tags).Methods("GET")
	api.Handle("/saved-posts", withSession(http.HandlerFunc(savedController.Index))).Methods("GET")
	api.Handle("/saved-posts", withSession(http.HandlerFunc(savedController.Toggle))).Methods("POST")

	// Web routes
	router.HandleFunc("/", postController.Home).Methods("GET")
	router.HandleFunc("/posts", postController.Index).Methods("GET")
	router.HandleFunc("/posts/", postController.Index).Methods("GET")
	router.Handle("/posts/{slug}/", withSession(http.HandlerFunc(postController.Show))).Methods("GET")
	router.Handle("/posts/{slug}/", throttled(postController.Comment)).Methods("POST")
	router.Handle("/saved-posts", withSession(http.HandlerFunc(savedController.Index))).Methods("GET")
	router.Handle("/saved-posts", withSession(http.HandlerFunc(savedController.Toggle))).Methods("POST")

	return router
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Not found"})
		return
	}
	http.NotFound(w, r)
}
