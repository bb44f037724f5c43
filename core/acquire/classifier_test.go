package acquire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySource(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want SourceKind
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", SourceStreamingPlatform},
		{"youtube short link", "https://youtu.be/dQw4w9WgXcQ", SourceStreamingPlatform},
		{"youtube music", "https://music.youtube.com/watch?v=abc12345678", SourceStreamingPlatform},
		{"mobile youtube", "https://m.youtube.com/watch?v=abc12345678", SourceStreamingPlatform},
		{"uppercase host", "https://WWW.YOUTUBE.COM/watch?v=abc12345678", SourceStreamingPlatform},
		{"spotify track", "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", SourceExternalMusicService},
		{"spotify bare", "https://spotify.com/track/xyz", SourceExternalMusicService},
		{"direct mp3", "https://example.com/music/song.mp3", SourceDirectFile},
		{"direct no extension", "http://cdn.example.org/stream", SourceDirectFile},
		{"ftp scheme", "ftp://example.com/song.mp3", SourceUnsupported},
		{"no scheme", "example.com/song.mp3", SourceUnsupported},
		{"empty", "", SourceUnsupported},
		{"garbage", "://///", SourceUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySource(tt.url))
		})
	}
}

func TestCleanStreamingURL(t *testing.T) {
	assert.Equal(t,
		"https://www.youtube.com/watch?v=abc",
		CleanStreamingURL("https://www.youtube.com/watch?v=abc&list=RDabc&index=2"))
	assert.Equal(t,
		"https://www.youtube.com/watch?v=abc",
		CleanStreamingURL("https://www.youtube.com/watch?v=abc&start_radio=1"))
	assert.Equal(t,
		"https://www.youtube.com/watch?v=abc",
		CleanStreamingURL("https://www.youtube.com/watch?v=abc"))
}
