package server

import (
	"encoding/json"
	"net/http"

	"Bt1QDL/cache"
	"Bt1QDL/config"
	"Bt1QDL/core/acquire"
	"Bt1QDL/core/progress"
	"Bt1QDL/repository"
)

// APIHandler bundles the dependencies of the HTTP boundary.
type APIHandler struct {
	orchestrator *acquire.Orchestrator
	broadcaster  *progress.Broadcaster
	sessions     *cache.SessionCache
	history      repository.AcquisitionRepository
	tracks       repository.TrackRepository
	cfg          *config.Config
}

// NewAPIHandler creates the API handler.
func NewAPIHandler(
	orchestrator *acquire.Orchestrator,
	broadcaster *progress.Broadcaster,
	sessions *cache.SessionCache,
	history repository.AcquisitionRepository,
	tracks repository.TrackRepository,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		orchestrator: orchestrator,
		broadcaster:  broadcaster,
		sessions:     sessions,
		history:      history,
		tracks:       tracks,
		cfg:          cfg,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
