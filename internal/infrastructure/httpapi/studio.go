package httpapi

import (
	"net/http"
	"time"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/genmedia"
)

// Generation calls outlive the server-wide write timeout: video blocks
// through submit-then-poll and compose retries with backoff. Each studio
// handler lifts the connection's write deadline to its own worst case.
const (
	maskDeadline    = 3 * time.Minute
	composeDeadline = 5 * time.Minute
	videoDeadline   = 10 * time.Minute
)

func extendWriteDeadline(w http.ResponseWriter, d time.Duration) {
	// Ignore the error: recorders and exotic writers without deadline
	// support still get the response, just under the default timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Now().Add(d))
}

// writeGenError maps the generation-service taxonomy to HTTP statuses.
// Auth failures are 502 on purpose: the bad credential is ours, not the
// caller's.
func writeGenError(w http.ResponseWriter, err error) {
	ge := genmedia.AsError(err)
	status := http.StatusBadGateway
	switch ge.Category {
	case genmedia.CategoryValidation:
		status = http.StatusBadRequest
	case genmedia.CategorySafety:
		status = http.StatusUnprocessableEntity
	case genmedia.CategoryQuota:
		status = http.StatusTooManyRequests
	case genmedia.CategoryTimeout:
		status = http.StatusGatewayTimeout
	case genmedia.CategoryUnavailable:
		status = http.StatusServiceUnavailable
	}
	writeError(w, status, string(ge.Category), ge.Message, nil)
}

func (d *Deps) handleStudioMask(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	extendWriteDeadline(w, maskDeadline)
	var req struct {
		Image string `json:"image"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	mask, err := d.Gen.DetectMask(r.Context(), req.Image)
	if err != nil {
		writeGenError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"mask": mask})
}

func (d *Deps) handleStudioCompose(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	extendWriteDeadline(w, composeDeadline)
	var req struct {
		Image  string `json:"image"`
		Mask   string `json:"mask"`
		Prompt string `json:"prompt"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	images, err := d.Gen.ComposeScene(r.Context(), req.Image, req.Mask, req.Prompt)
	if err != nil {
		writeGenError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": images})
}

func (d *Deps) handleStudioVideo(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	extendWriteDeadline(w, videoDeadline)
	var req struct {
		Image  string `json:"image"`
		Prompt string `json:"prompt"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	url, err := d.Gen.GenerateVideo(r.Context(), req.Image, req.Prompt)
	if err != nil {
		writeGenError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
