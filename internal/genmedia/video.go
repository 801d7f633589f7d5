package genmedia

import (
	"context"
	"time"
)

type videoSubmitRequest struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

type videoSubmitResponse struct {
	OperationID string `json:"operationId"`
}

type videoStatusResponse struct {
	Status string `json:"status"`
	URL    string `json:"url"`
	Error  string `json:"error"`
}

const (
	videoStatusPending  = "pending"
	videoStatusRunning  = "running"
	videoStatusDone     = "done"
	videoStatusFailed   = "failed"
	videoStatusRejected = "rejected"
)

// GenerateVideo submits a video generation job and polls until the service
// reports a result. The submit call uses the shared retry policy; the poll
// loop runs at a fixed interval and gives up after the configured number of
// attempts with a timeout error.
func (c *Client) GenerateVideo(ctx context.Context, imageB64, prompt string) (string, error) {
	if err := requireField("image", imageB64); err != nil {
		return "", err
	}
	if err := requireField("prompt", prompt); err != nil {
		return "", err
	}

	data, err := c.post(ctx, "video", "/v1/video", videoSubmitRequest{Image: imageB64, Prompt: prompt}, c.opts.SubmitTimeout)
	if err != nil {
		return "", err
	}
	var sub videoSubmitResponse
	if err := decodeInto(data, &sub); err != nil {
		return "", err
	}
	if sub.OperationID == "" {
		return "", &Error{Category: CategoryProcessing, Message: "service returned no operation id"}
	}

	c.log.Info().Str("operation", sub.OperationID).Msg("video generation submitted")
	return c.pollVideo(ctx, sub.OperationID)
}

func (c *Client) pollVideo(ctx context.Context, opID string) (string, error) {
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for attempt := 0; attempt < c.opts.PollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", &Error{Category: CategoryTimeout, Message: "video generation cancelled", Err: ctx.Err()}
		case <-ticker.C:
		}

		data, err := c.get(ctx, "/v1/video/"+opID, c.opts.SubmitTimeout)
		if err != nil {
			ge := AsError(err)
			if !ge.Retryable() {
				return "", ge
			}
			c.log.Warn().Str("operation", opID).Err(ge).Msg("video status poll failed")
			continue
		}

		var st videoStatusResponse
		if err := decodeInto(data, &st); err != nil {
			return "", err
		}
		switch st.Status {
		case videoStatusDone:
			if st.URL == "" {
				return "", &Error{Category: CategoryProcessing, Message: "video finished without a download url"}
			}
			c.met.GenMediaRequestsTotal.WithLabelValues("video_poll", "ok").Inc()
			return st.URL, nil
		case videoStatusFailed:
			return "", &Error{Category: CategoryProcessing, Message: firstLine(st.Error, "video generation failed")}
		case videoStatusRejected:
			return "", &Error{Category: CategorySafety, Message: firstLine(st.Error, "video rejected by safety filter")}
		case videoStatusPending, videoStatusRunning, "":
			// keep polling
		default:
			c.log.Warn().Str("operation", opID).Str("status", st.Status).Msg("unknown video status")
		}
	}
	return "", &Error{Category: CategoryTimeout, Message: "video generation did not finish in time"}
}
