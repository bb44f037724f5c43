package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadToFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.mp3")
	contentType, err := DownloadToFile(context.Background(), srv.Client(), srv.URL, dest)
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", contentType)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestDownloadToFileBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.mp3")
	_, err := DownloadToFile(context.Background(), srv.Client(), srv.URL, dest)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestExtensionFromURL(t *testing.T) {
	cases := map[string]string{
		"https://cdn.example.com/tracks/song.mp3":       ".mp3",
		"https://cdn.example.com/tracks/song.MP3?x=1":   ".mp3",
		"https://cdn.example.com/tracks/song":           "",
		"https://example.com/":                          "",
		"https://example.com/archive.verylongext12345":  "",
	}
	for rawURL, want := range cases {
		assert.Equal(t, want, ExtensionFromURL(rawURL), rawURL)
	}
}

func TestExtensionFromContentType(t *testing.T) {
	assert.Equal(t, ".mp3", ExtensionFromContentType("audio/mpeg"))
	assert.Equal(t, ".mp3", ExtensionFromContentType("audio/mpeg; charset=utf-8"))
	assert.Equal(t, ".m4a", ExtensionFromContentType("audio/mp4"))
	assert.Equal(t, ".jpg", ExtensionFromContentType("image/jpeg"))
	assert.Equal(t, "", ExtensionFromContentType("text/html"))
	assert.Equal(t, "", ExtensionFromContentType(""))
}

func TestIsAudioFile(t *testing.T) {
	assert.True(t, IsAudioFile("/tmp/a/b.mp3"))
	assert.True(t, IsAudioFile("track.OPUS"))
	assert.False(t, IsAudioFile("cover.jpg"))
	assert.False(t, IsAudioFile("noext"))
}
