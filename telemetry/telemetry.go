// Package telemetry records prompt and feedback events for later product
// analysis. Recording is best effort; analysis flow never depends on it.
package telemetry

import "time"

// PromptRecord captures one analysis request, successful or not. History is
// truncated by the recorder so oversized threads cannot bloat storage.
type PromptRecord struct {
	ID          string
	UserID      string
	Provider    string
	Model       string
	Scenario    string
	Tone        int
	History     string
	UserContext string
	Degraded    bool
	ErrorKind   string // "" on success
	ErrorMsg    string
	LatencyMS   int64
	CreatedAt   time.Time
}

// FeedbackRecord captures a user's verdict on a generated strategy after they
// actually used it.
type FeedbackRecord struct {
	ID            string
	UserID        string
	Scenario      string
	Tone          int
	ResponseType  string // strategy label of the reply they sent
	Outcome       string // great, okay, bad
	Rating        int    // 1-5, 0 when not given
	Helpful       bool
	WouldUseAgain bool
	Notes         string
	CreatedAt     time.Time
}

// Recorder persists telemetry events.
type Recorder interface {
	RecordPrompt(rec PromptRecord) error
	RecordFeedback(rec FeedbackRecord) error
}

// Discard is a Recorder that drops everything.
type Discard struct{}

func (Discard) RecordPrompt(PromptRecord) error     { return nil }
func (Discard) RecordFeedback(FeedbackRecord) error { return nil }
