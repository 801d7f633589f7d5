package domain

import "time"

type RenderStatus string

const (
	// RenderQueued is part of the engine's wire vocabulary; local jobs skip
	// straight to rendering because the engine accepts one render at a time.
	RenderQueued    RenderStatus = "queued"
	RenderRendering RenderStatus = "rendering"
	RenderComplete  RenderStatus = "complete"
	RenderFailed    RenderStatus = "failed"
)

// RenderJob tracks the single engine-side video render. A new render always
// replaces the previous record. Progress is a last-write-wins snapshot; the
// engine does not guarantee monotonic updates.
type RenderJob struct {
	ID           string       `json:"id"`
	SequenceID   string       `json:"sequenceId"` // may be a comma-joined list
	Status       RenderStatus `json:"status"`
	Progress     int          `json:"progress"`
	DownloadURL  string       `json:"downloadUrl,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	StartedAt    time.Time    `json:"startedAt"`
}

// Terminal reports whether the job reached a final state.
func (j *RenderJob) Terminal() bool {
	return j.Status == RenderComplete || j.Status == RenderFailed
}
