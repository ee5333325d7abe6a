package api

import (
	"location-capture-service/internal/api/handlers"
	"net/http"

	"github.com/rs/zerolog"
)

// Deps are the collaborators behind the HTTP surface.
// Metrics and Published are optional; their routes are not mounted when nil.
type Deps struct {
	Locations handlers.LocationLister
	Published handlers.SnapshotReader
	Captures  handlers.Capturer
	DarkMode  handlers.DarkModeStore
	Metrics   http.Handler
	Logger    zerolog.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	locHandler := &handlers.LocationHandler{Store: deps.Locations, Snapshots: deps.Published}
	captureHandler := &handlers.CaptureHandler{Controller: deps.Captures}
	prefHandler := &handlers.PreferenceHandler{Prefs: deps.DarkMode}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/locations", locHandler.List)
	if deps.Published != nil {
		mux.HandleFunc("/locations/published", locHandler.Published)
	}
	mux.HandleFunc("/captures", captureHandler.Capture)
	mux.HandleFunc("/preferences/dark-mode", prefHandler.DarkMode)
	mux.HandleFunc("/preferences/dark-mode/toggle", prefHandler.ToggleDarkMode)
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics)
	}

	return loggingMiddleware(deps.Logger, mux)
}
