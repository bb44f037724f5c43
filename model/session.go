package model

// AcquisitionStatus is the lifecycle state of one acquisition session.
type AcquisitionStatus string

const (
	StatusPending     AcquisitionStatus = "pending"
	StatusAnalyzing   AcquisitionStatus = "analyzing"
	StatusDownloading AcquisitionStatus = "downloading"
	StatusProcessing  AcquisitionStatus = "processing"
	StatusComplete    AcquisitionStatus = "complete"
	StatusError       AcquisitionStatus = "error"
	StatusCancelled   AcquisitionStatus = "cancelled"
)

// Terminal reports whether no further transitions can occur from s.
func (s AcquisitionStatus) Terminal() bool {
	return s == StatusComplete || s == StatusError || s == StatusCancelled
}

// AcquisitionSession is the per-request state owned by the orchestrator
// goroutine that created it. It is never shared across sessions.
type AcquisitionSession struct {
	ID          string            `json:"sessionId"`
	SourceURL   string            `json:"sourceUrl"`
	Status      AcquisitionStatus `json:"status"`
	Stage       string            `json:"stage"`
	Progress    int               `json:"progress"`
	LastMessage string            `json:"lastMessage"`
}

// EventType is the kind of a progress frame.
type EventType string

const (
	EventStatus   EventType = "status"
	EventProgress EventType = "progress"
	EventError    EventType = "error"
	EventComplete EventType = "complete"
)

// Terminal reports whether the event ends the session's stream.
func (t EventType) Terminal() bool {
	return t == EventError || t == EventComplete
}

// ProgressEvent is one frame on a session's progress stream. Events are
// transient; they only exist in transit and are never persisted.
type ProgressEvent struct {
	SessionID string    `json:"sessionId"`
	Type      EventType `json:"type"`
	Message   string    `json:"message"`
	Progress  int       `json:"progress"`
	Stage     string    `json:"stage"`
}
