package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"Bt1QDL/logger"
)

type startAcquisitionRequest struct {
	URL string `json:"url"`
}

// StartAcquisitionHandler accepts a URL, returns a session id immediately and
// runs the pipeline asynchronously.
func (h *APIHandler) StartAcquisitionHandler(w http.ResponseWriter, r *http.Request) {
	var req startAcquisitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	sessionID := uuid.New().String()
	logger.Info("acquisition started",
		logger.String("sessionId", sessionID),
		logger.String("url", req.URL))

	go h.orchestrator.Run(context.Background(), sessionID, req.URL)

	respondJSON(w, http.StatusAccepted, map[string]string{"sessionId": sessionID})
}

// EventsHandler streams a session's progress as newline-delimited JSON frames
// until the terminal frame plus the grace period.
func (h *APIHandler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, unsubscribe := h.broadcaster.Register(sessionID)
	defer unsubscribe()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	encoder := json.NewEncoder(w)
	for {
		select {
		case ev, open := <-events:
			if !open {
				return
			}
			if err := encoder.Encode(ev); err != nil {
				logger.Debug("progress stream write failed",
					logger.String("sessionId", sessionID),
					logger.ErrorField(err))
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// CancelAcquisitionHandler requests cancellation of a running session. The
// subscriber, if attached, receives exactly one terminal frame afterwards.
func (h *APIHandler) CancelAcquisitionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	if !h.broadcaster.RequestCancel(sessionID) {
		respondError(w, http.StatusNotFound, "unknown session")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "cancelling"})
}

// SessionStatusHandler returns the latest snapshot of a session from the
// Redis mirror. Events are at-most-once; this is how reconnecting clients
// catch up.
func (h *APIHandler) SessionStatusHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	session, err := h.sessions.GetSnapshot(ctx, sessionID)
	if err != nil {
		logger.Error("session snapshot load failed",
			logger.String("sessionId", sessionID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if session == nil {
		respondError(w, http.StatusNotFound, "unknown session")
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// HistoryHandler lists recently finished acquisitions.
func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	records, err := h.history.Recent(limit)
	if err != nil {
		logger.Error("history load failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	respondJSON(w, http.StatusOK, records)
}
