package extractor

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Marker grammar, version 1. The fallback extractor reports progress through
// a small set of recognizable stdout lines:
//
//	Attempt 3: TV Client           -- a new internal strategy started
//	[download]  42.3% of 3.4MiB    -- percent progress of the current download
//	{"success": true, ...}         -- final JSON result line
//
// Keeping the patterns here, behind ParseMarker, keeps the parsing testable
// independent of process spawning.

// MarkerKind discriminates parsed marker lines.
type MarkerKind int

const (
	MarkerAttempt MarkerKind = iota
	MarkerPercent
)

// Marker is one recognized stdout line.
type Marker struct {
	Kind     MarkerKind
	Attempt  int
	Strategy string
	Percent  float64
}

var (
	attemptRe = regexp.MustCompile(`^Attempt (\d+): (.+)$`)
	percentRe = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
)

// ParseMarker classifies a single stdout line. Unrecognized lines return
// ok=false and are ignored by callers.
func ParseMarker(line string) (Marker, bool) {
	line = strings.TrimSpace(line)

	if m := attemptRe.FindStringSubmatch(line); m != nil {
		attempt, _ := strconv.Atoi(m[1])
		return Marker{Kind: MarkerAttempt, Attempt: attempt, Strategy: strings.TrimSpace(m[2])}, true
	}

	if m := percentRe.FindStringSubmatch(line); m != nil {
		pct, err := strconv.ParseFloat(m[1], 64)
		if err == nil && pct >= 0 && pct <= 100 {
			return Marker{Kind: MarkerPercent, Percent: pct}, true
		}
	}

	return Marker{}, false
}

// FallbackResult is the final JSON line the fallback extractor prints.
type FallbackResult struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Duration int    `json:"duration"`
	Strategy string `json:"strategy"`
	Error    string `json:"error"`
}

// ParseFallbackResult scans captured stdout for the result line. The script
// prints diagnostics first, so the JSON line is searched from the end.
func ParseFallbackResult(stdout string) (*FallbackResult, bool) {
	lines := strings.Split(stdout, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var res FallbackResult
		if err := json.Unmarshal([]byte(line), &res); err == nil {
			return &res, true
		}
	}
	return nil, false
}
