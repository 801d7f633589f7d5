package bridge

import (
	"context"
	"time"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/adapters/decoders/engine"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
	"github.com/house-360-vn/virtual-studio-web-remove-background/pkg/shared/id"
)

// CaptureScreenshot requests a capture; the shot lands in the collection
// when the engine responds with the resulting url.
func (b *Bridge) CaptureScreenshot(withBackground bool) bool {
	return b.emit.TakeScreenshot(withBackground)
}

// handleScreenshot appends a new screenshot to the front of the collection.
// The payload delivers the url either directly as a data string or under
// data.url; the id prefix distinguishes the two capture kinds.
func (b *Bridge) handleScreenshot(env *engine.Envelope, withBackground bool) {
	if !env.OK() {
		b.log.Warn().Str("action", env.Action).Str("status", env.Status).Msg("capture: screenshot failed")
		return
	}
	url, ok := engine.ScreenshotURL(env.Data)
	if !ok {
		b.log.Warn().Str("action", env.Action).Msg("capture: no url in screenshot payload")
		b.met.EventsDroppedTotal.WithLabelValues("unparseable_payload").Inc()
		return
	}
	prefix := "shot"
	if !withBackground {
		prefix = "shot-nobg"
	}
	shot := domain.Screenshot{
		ID:        id.NewWithPrefix(prefix),
		URL:       url,
		Timestamp: time.Now().UTC(),
	}
	if err := b.studio.AddScreenshot(context.Background(), shot); err != nil {
		b.log.Error().Err(err).Msg("capture: storing screenshot failed")
		return
	}
	b.met.ScreenshotsTotal.Inc()
	b.emitNotify("screenshot_added", shot.ID)
}
