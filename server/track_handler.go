package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"Bt1QDL/logger"
)

// GetTrackHandler returns one acquired track by id.
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid track id")
		return
	}

	track, err := h.tracks.GetTrackByID(id)
	if err != nil {
		logger.Error("track load failed",
			logger.Int64("trackId", id),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to load track")
		return
	}
	if track == nil {
		respondError(w, http.StatusNotFound, "track not found")
		return
	}
	respondJSON(w, http.StatusOK, track)
}

// ListTracksHandler returns the most recently acquired tracks.
func (h *APIHandler) ListTracksHandler(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	tracks, err := h.tracks.GetRecentTracks(limit)
	if err != nil {
		logger.Error("track list failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list tracks")
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}
