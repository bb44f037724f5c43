package acquire

import (
	"net/url"
	"strings"
)

// SourceKind is the class of a user-supplied URL.
type SourceKind string

const (
	SourceDirectFile           SourceKind = "direct_file"
	SourceStreamingPlatform    SourceKind = "streaming_platform"
	SourceExternalMusicService SourceKind = "external_music_service"
	SourceUnsupported          SourceKind = "unsupported"
)

// Host allow-lists. Classification is by exact host match after lowercasing
// and stripping a leading "www.".
var streamingHosts = map[string]bool{
	"youtube.com":       true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

var musicServiceHosts = map[string]bool{
	"spotify.com":      true,
	"open.spotify.com": true,
}

// ClassifySource maps a raw URL to its source kind. Pure function, no side
// effects; anything unparseable or schemeless is Unsupported.
func ClassifySource(raw string) SourceKind {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return SourceUnsupported
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return SourceUnsupported
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return SourceUnsupported
	}
	host = strings.TrimPrefix(host, "www.")

	if streamingHosts[host] {
		return SourceStreamingPlatform
	}
	if musicServiceHosts[host] {
		return SourceExternalMusicService
	}
	return SourceDirectFile
}

// CleanStreamingURL strips playlist and radio parameters from a streaming
// platform URL so the extractor fetches a single item.
func CleanStreamingURL(raw string) string {
	cleaned := strings.Split(raw, "&list=")[0]
	cleaned = strings.Split(cleaned, "&start_radio=")[0]
	return cleaned
}
