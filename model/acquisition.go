package model

import "time"

// AcquisitionRecord is the history row written at every terminal transition.
type AcquisitionRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:64;index" json:"sessionId"`
	SourceURL string    `gorm:"size:1024" json:"sourceUrl"`
	Status    string    `gorm:"size:32" json:"status"`
	Strategy  string    `gorm:"size:64" json:"strategy"`
	TrackID   int64     `json:"trackId,omitempty"`
	Duration  int       `json:"duration"`
	ErrorMsg  string    `gorm:"size:512" json:"errorMsg,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName keeps the table name stable regardless of gorm pluralization.
func (AcquisitionRecord) TableName() string {
	return "acquisitions"
}
