package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Bt1QDL/model"
)

type stubTrackRepo struct {
	tracks map[int64]*model.Track
}

func (s *stubTrackRepo) CreateTrack(track *model.Track) (int64, error) {
	id := int64(len(s.tracks) + 1)
	s.tracks[id] = track
	return id, nil
}

func (s *stubTrackRepo) GetTrackByID(id int64) (*model.Track, error) {
	return s.tracks[id], nil
}

func (s *stubTrackRepo) GetRecentTracks(limit int) ([]*model.Track, error) {
	var out []*model.Track
	for _, tr := range s.tracks {
		if len(out) == limit {
			break
		}
		out = append(out, tr)
	}
	return out, nil
}

func newTrackRouter(repo *stubTrackRepo) *mux.Router {
	h := &APIHandler{tracks: repo}
	r := mux.NewRouter()
	r.HandleFunc("/api/tracks", h.ListTracksHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/tracks/{id}", h.GetTrackHandler).Methods(http.MethodGet)
	return r
}

func TestGetTrack(t *testing.T) {
	repo := &stubTrackRepo{tracks: map[int64]*model.Track{
		7: {ID: 7, Title: "Song", Artist: "Artist"},
	}}
	router := newTrackRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/tracks/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Track
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Song", got.Title)
}

func TestGetTrackNotFound(t *testing.T) {
	router := newTrackRouter(&stubTrackRepo{tracks: map[int64]*model.Track{}})

	req := httptest.NewRequest(http.MethodGet, "/api/tracks/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/tracks/notanumber", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTracksLimit(t *testing.T) {
	repo := &stubTrackRepo{tracks: map[int64]*model.Track{}}
	for i := int64(1); i <= 5; i++ {
		repo.tracks[i] = &model.Track{ID: i, Title: fmt.Sprintf("t%d", i)}
	}
	router := newTrackRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/tracks?limit=3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []*model.Track
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 3)
}
