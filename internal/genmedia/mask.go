package genmedia

import "context"

type maskRequest struct {
	Image string `json:"image"`
}

type maskResponse struct {
	Mask string `json:"mask"`
}

// DetectMask isolates the vehicle in the given image and returns a
// base64-encoded alpha mask covering it.
func (c *Client) DetectMask(ctx context.Context, imageB64 string) (string, error) {
	if err := requireField("image", imageB64); err != nil {
		return "", err
	}
	data, err := c.post(ctx, "mask", "/v1/mask", maskRequest{Image: imageB64}, c.opts.MaskTimeout)
	if err != nil {
		return "", err
	}
	var res maskResponse
	if err := decodeInto(data, &res); err != nil {
		return "", err
	}
	if res.Mask == "" {
		return "", &Error{Category: CategoryProcessing, Message: "service returned no mask"}
	}
	return res.Mask, nil
}
