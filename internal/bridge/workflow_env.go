package bridge

import (
	"context"
	"fmt"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/adapters/decoders/engine"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
)

// ChangeBackground resolves the image path for the current day/night flag
// before sending and records the option optimistically.
func (b *Bridge) ChangeBackground(id string) error {
	bg, ok, err := b.studio.GetBackground(context.Background(), id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("background %q: %w", id, domain.ErrNotFound)
	}
	b.mu.Lock()
	isDay := b.isDay
	b.mu.Unlock()
	if b.emit.ChangeBackground(bg.ID, bg.Image(isDay)) {
		b.mu.Lock()
		b.background = bg
		b.mu.Unlock()
		b.emitNotify("background_selected", bg.ID)
	}
	return nil
}

// ChangeDayNight sends the image variant for the requested mode and flips
// the local flag once the command is out.
func (b *Bridge) ChangeDayNight(isDay bool) {
	b.mu.Lock()
	image := b.background.Image(isDay)
	b.mu.Unlock()
	if b.emit.ChangeDayNight(isDay, image) {
		b.mu.Lock()
		b.isDay = isDay
		b.mu.Unlock()
		b.emitNotify("daynight_changed", "")
	}
}

// handleBackgroundChanged cascades on success in video mode: a background
// change typically means a level change, and sequences are level-scoped, so
// the list, the selection queue and playback are all reset, then discovery
// re-runs after a settle delay.
func (b *Bridge) handleBackgroundChanged(env *engine.Envelope) {
	if !env.OK() {
		b.log.Warn().Str("backgroundId", env.BackgroundID).Str("status", env.Status).Msg("environment: background change failed")
		return
	}
	b.mu.Lock()
	if b.mode == ModeVideo {
		b.sequences = nil
		b.queue = nil
		b.playFSM.SetState(playStopped)
		b.scheduleLocked(timerResequence, b.cfg.ResequenceDelay, func() {
			b.emit.GetSequences()
		})
	}
	b.mu.Unlock()
	b.emitNotify("background_changed", env.BackgroundID)
}

func (b *Bridge) handleDayNightChanged(env *engine.Envelope) {
	if !env.OK() {
		b.log.Warn().Str("status", env.Status).Msg("environment: day/night change failed")
		return
	}
	if env.IsDay != nil {
		b.mu.Lock()
		b.isDay = *env.IsDay
		b.mu.Unlock()
	}
	b.emitNotify("daynight_changed", "")
}
