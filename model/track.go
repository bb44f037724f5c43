package model

import "time"

// Track is the persisted record handed to the library on a completed
// acquisition.
type Track struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Artist       string    `json:"artist"`
	Album        string    `json:"album"`
	FilePath     string    `json:"-"` // path to the original audio file, not exposed in API directly
	CoverArtPath string    `json:"coverArtPath"`
	Duration     float32   `json:"duration"` // duration in seconds
	SourceURL    string    `json:"sourceUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
