package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkerAttempt(t *testing.T) {
	m, ok := ParseMarker("Attempt 3: TV Client")
	require.True(t, ok)
	assert.Equal(t, MarkerAttempt, m.Kind)
	assert.Equal(t, 3, m.Attempt)
	assert.Equal(t, "TV Client", m.Strategy)
}

func TestParseMarkerPercent(t *testing.T) {
	cases := []struct {
		line string
		pct  float64
	}{
		{"[download]  42.3% of 3.40MiB at 1.2MiB/s", 42.3},
		{"[download]  42.3% of 5242880 bytes", 42.3},
		{"[download] 100% of 3.40MiB", 100},
		{"  0.0% done", 0},
	}
	for _, c := range cases {
		m, ok := ParseMarker(c.line)
		require.True(t, ok, c.line)
		assert.Equal(t, MarkerPercent, m.Kind, c.line)
		assert.Equal(t, c.pct, m.Percent, c.line)
	}
}

func TestParseMarkerIgnoresNoise(t *testing.T) {
	for _, line := range []string{
		"",
		"[youtube] abc12345678: Downloading webpage",
		"WARNING: unable to extract uploader id",
		"Attempt x: broken header",
	} {
		_, ok := ParseMarker(line)
		assert.False(t, ok, line)
	}
}

func TestParseFallbackResultLastJSONLine(t *testing.T) {
	stdout := "Attempt 1: Android Client\n" +
		"[download] 100% of 3.4MiB\n" +
		`{"success": true, "filename": "out.mp3", "title": "T", "artist": "A", "duration": 185, "strategy": "Android Client"}` + "\n"

	res, ok := ParseFallbackResult(stdout)
	require.True(t, ok)
	assert.True(t, res.Success)
	assert.Equal(t, "out.mp3", res.Filename)
	assert.Equal(t, "T", res.Title)
	assert.Equal(t, 185, res.Duration)
	assert.Equal(t, "Android Client", res.Strategy)
}

func TestParseFallbackResultFailure(t *testing.T) {
	stdout := `{"success": false, "error": "All strategies failed"}` + "\n"
	res, ok := ParseFallbackResult(stdout)
	require.True(t, ok)
	assert.False(t, res.Success)
	assert.Equal(t, "All strategies failed", res.Error)
}

func TestParseFallbackResultNoJSON(t *testing.T) {
	_, ok := ParseFallbackResult("nothing here\njust logs\n")
	assert.False(t, ok)
}
