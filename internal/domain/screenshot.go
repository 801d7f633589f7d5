package domain

import "time"

// Screenshot is one captured still. URL may be a data URL or a remote URL;
// identical URLs are kept as independent entries.
type Screenshot struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
}
