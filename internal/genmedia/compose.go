package genmedia

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

const composeVariants = 3

type composeRequest struct {
	Image   string `json:"image"`
	Mask    string `json:"mask,omitempty"`
	Prompt  string `json:"prompt"`
	Variant int    `json:"variant"`
}

type composeResponse struct {
	Image string `json:"image"`
}

// ComposeScene places the masked vehicle into a generated scene. Three
// independent variants are requested in parallel; the call succeeds with
// whichever subset came back, and fails only when every variant failed.
func (c *Client) ComposeScene(ctx context.Context, imageB64, maskB64, prompt string) ([]string, error) {
	if err := requireField("image", imageB64); err != nil {
		return nil, err
	}
	if err := requireField("prompt", prompt); err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		images  []string
		lastErr error
	)
	var g errgroup.Group
	for i := 0; i < composeVariants; i++ {
		variant := i
		g.Go(func() error {
			req := composeRequest{Image: imageB64, Mask: maskB64, Prompt: prompt, Variant: variant}
			data, err := c.post(ctx, "compose", "/v1/compose", req, c.opts.ImageTimeout)
			if err != nil {
				c.log.Warn().Int("variant", variant).Err(err).Msg("compose variant failed")
				mu.Lock()
				lastErr = err
				mu.Unlock()
				return nil
			}
			var res composeResponse
			if err := decodeInto(data, &res); err != nil || res.Image == "" {
				mu.Lock()
				lastErr = &Error{Category: CategoryProcessing, Message: "service returned no image"}
				mu.Unlock()
				return nil
			}
			mu.Lock()
			images = append(images, res.Image)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(images) == 0 {
		if lastErr != nil {
			return nil, AsError(lastErr)
		}
		return nil, &Error{Category: CategoryProcessing, Message: "all compose variants failed"}
	}
	return images, nil
}
