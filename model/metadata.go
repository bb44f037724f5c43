package model

// ExtractedMetadata is the canonical metadata record for one acquired asset.
// Created once per successful session, immutable thereafter.
type ExtractedMetadata struct {
	Duration       int    `json:"duration"` // seconds
	Title          string `json:"title"`
	Artist         string `json:"artist"`
	Album          string `json:"album,omitempty"`
	ThumbnailPath  string `json:"thumbnailPath,omitempty"`
	SourceStrategy string `json:"sourceStrategy"` // provenance tag
}

// DownloadedAsset is the file a successful strategy produced. At most one
// exists per session.
type DownloadedAsset struct {
	LocalPath string `json:"localPath"`
	Filename  string `json:"filename"`
}
