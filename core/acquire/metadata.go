package acquire

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"Bt1QDL/logger"
	"Bt1QDL/model"
)

const unknownArtist = "Unknown Artist"

// MetadataProber reads duration and tags from a downloaded audio file.
type MetadataProber interface {
	Duration(inputFile string) (float64, error)
	Tags(inputFile string) (map[string]string, error)
}

// SelfReported is metadata a strategy or resolver printed about its own
// download. It takes precedence over post-hoc tag probing.
type SelfReported struct {
	Title        string
	Artist       string
	Album        string
	ThumbnailURL string
	Duration     int
}

// NormalizeMetadata reconciles the candidate metadata sources for one session
// into the canonical record. self, when present, always wins over tag
// probing; probing is only consulted for fields self does not carry.
// Metadata failure is never fatal: the worst case is a filename-derived title
// and a placeholder artist.
func NormalizeMetadata(prober MetadataProber, localPath string, self *SelfReported, strategy string) model.ExtractedMetadata {
	meta := model.ExtractedMetadata{
		SourceStrategy: strategy,
		Artist:         unknownArtist,
	}

	if self != nil && self.Title != "" {
		meta.Title = self.Title
		meta.Album = self.Album
		meta.Duration = self.Duration
		if self.Artist != "" {
			meta.Artist = self.Artist
		}
		applyTitleSplit(&meta)
	} else {
		fillFromTags(prober, localPath, &meta)
	}

	if meta.Title == "" {
		meta.Title = titleFromFilename(localPath)
	}
	if meta.Duration <= 0 && prober != nil {
		if dur, err := prober.Duration(localPath); err != nil {
			logger.Warn("duration probe failed",
				logger.String("file", localPath),
				logger.ErrorField(err))
		} else {
			meta.Duration = int(dur)
		}
	}
	return meta
}

func fillFromTags(prober MetadataProber, localPath string, meta *model.ExtractedMetadata) {
	if prober == nil {
		return
	}
	tags, err := prober.Tags(localPath)
	if err != nil {
		logger.Warn("tag probe failed",
			logger.String("file", localPath),
			logger.ErrorField(err))
		return
	}
	// Keys are lowered by the prober, so one lookup covers TITLE/Title/title.
	if v := tags["title"]; v != "" {
		meta.Title = v
	}
	if v := tags["artist"]; v != "" {
		meta.Artist = v
	} else if v := tags["album_artist"]; v != "" {
		meta.Artist = v
	}
	if v := tags["album"]; v != "" {
		meta.Album = v
	}
}

// applyTitleSplit recovers the artist from titles of the form
// "Artist - Song" or "Artist: Song" when no usable artist was reported.
// Uploader names that look like labels rather than artists are demoted too.
func applyTitleSplit(meta *model.ExtractedMetadata) {
	if meta.Artist != unknownArtist && !looksLikeLabel(meta.Artist) {
		return
	}
	for _, sep := range []string{" - ", ": "} {
		if artist, title, ok := strings.Cut(meta.Title, sep); ok {
			artist = strings.TrimSpace(artist)
			title = strings.TrimSpace(title)
			if artist != "" && title != "" {
				meta.Artist = artist
				meta.Title = title
				return
			}
		}
	}
}

func looksLikeLabel(artist string) bool {
	return strings.Contains(artist, "Records") || strings.Contains(artist, "Music")
}

func titleFromFilename(localPath string) string {
	base := filepath.Base(localPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ytdlpInfo is the subset of the yt-dlp JSON document the first cascade
// strategy prints.
type ytdlpInfo struct {
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	Uploader  string  `json:"uploader"`
	Channel   string  `json:"channel"`
	Album     string  `json:"album"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`
}

// ParseRichMetadata extracts self-reported metadata from a rich strategy's
// stdout. The JSON document is the last line starting with '{'.
func ParseRichMetadata(stdout string) *SelfReported {
	lines := strings.Split(stdout, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var info ytdlpInfo
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			continue
		}
		if info.Title == "" {
			continue
		}
		artist := info.Artist
		if artist == "" {
			artist = info.Uploader
		}
		if artist == "" || looksLikeLabel(artist) {
			if info.Channel != "" {
				artist = info.Channel
			}
		}
		return &SelfReported{
			Title:        info.Title,
			Artist:       artist,
			Album:        info.Album,
			ThumbnailURL: info.Thumbnail,
			Duration:     int(info.Duration),
		}
	}
	return nil
}
