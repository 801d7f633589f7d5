package bridge

import (
	"context"
	"fmt"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/adapters/decoders/engine"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
)

// SelectCar switches the active car. The load state resets to NotLoaded
// unconditionally, even mid-flight, and all pending timers for the old car
// are canceled so a stale timer cannot mutate state for a superseded
// selection. The load command goes out immediately when the session is
// ready; otherwise the readiness poll picks it up.
func (b *Bridge) SelectCar(id string) error {
	car, ok, err := b.studio.GetCar(context.Background(), id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("car %q: %w", id, domain.ErrNotFound)
	}
	ready := b.reg.IsReady()
	b.mu.Lock()
	if car.ID != b.carID {
		b.carID = car.ID
		b.carGen++
		b.cancelTimersLocked()
		b.carFSM.SetState(string(domain.CarNotLoaded))
		b.colorHex = ""
		b.wheelID = ""
	}
	if ready && b.carFSM.Current() == string(domain.CarNotLoaded) {
		b.requestCarLoadLocked()
	}
	b.mu.Unlock()
	b.emitNotify("car_selected", car.ID)
	return nil
}

func (b *Bridge) requestCarLoadLocked() {
	if b.emit.LoadCar(b.carID) {
		_ = b.carFSM.Event(context.Background(), evCarLoadRequested)
	}
}

// SetColor records the selection optimistically the moment the command is
// sent; there is no rollback path if the engine silently fails.
func (b *Bridge) SetColor(hex string) {
	b.mu.Lock()
	carID := b.carID
	b.mu.Unlock()
	if b.emit.SetColor(carID, hex) {
		b.mu.Lock()
		b.colorHex = hex
		b.mu.Unlock()
		b.emitNotify("color_selected", hex)
	}
}

// SetWheel mirrors SetColor: optimistic, last pick wins.
func (b *Bridge) SetWheel(wheelID string) {
	b.mu.Lock()
	carID := b.carID
	b.mu.Unlock()
	if b.emit.SetWheel(carID, wheelID) {
		b.mu.Lock()
		b.wheelID = wheelID
		b.mu.Unlock()
		b.emitNotify("wheel_selected", wheelID)
	}
}

// handleCarLoadResult resolves Car/LoadById. A confirmation echoing a car id
// other than the current one is a late arrival for a superseded selection
// and must not mark the new car loaded.
func (b *Bridge) handleCarLoadResult(env *engine.Envelope) {
	b.mu.Lock()
	if env.CarID != "" && env.CarID != b.carID {
		b.mu.Unlock()
		b.log.Debug().Str("carId", env.CarID).Msg("car: stale load confirmation ignored")
		return
	}
	if !env.OK() {
		// back to NotLoaded; the readiness poll retries at its own cadence
		b.carFSM.SetState(string(domain.CarNotLoaded))
		b.mu.Unlock()
		b.log.Warn().Str("carId", env.CarID).Str("status", env.Status).Msg("car: load failed")
		return
	}
	if err := b.carFSM.Event(context.Background(), evCarLoadConfirmed); err != nil {
		b.mu.Unlock()
		b.log.Debug().Err(err).Msg("car: load confirmation in unexpected state")
		return
	}
	carID := b.carID
	// hand the streaming endpoint over only after the engine finished its
	// internal setup; the load-completes-before-handoff ordering is a
	// correctness requirement
	if b.cfg.StreamEndpointURL != "" {
		url := b.cfg.StreamEndpointURL
		b.scheduleLocked(timerURLHandoff, b.cfg.URLHandoffDelay, func() {
			b.emit.SetStreamURL(url)
		})
	}
	b.mu.Unlock()
	b.log.Info().Str("carId", carID).Msg("car: loaded")
	b.emitNotify("car_loaded", carID)
}

// handleSelectionConfirm reads the log-level confirmation for color/wheel
// picks. Selections were already applied optimistically; failures here are
// logged, not surfaced.
func (b *Bridge) handleSelectionConfirm(env *engine.Envelope) {
	if !env.OK() {
		b.log.Warn().Str("action", env.Action).Str("status", env.Status).Msg("car: selection not confirmed by engine")
		return
	}
	b.log.Debug().Str("action", env.Action).Str("hex", env.Hex).Msg("car: selection confirmed")
}
