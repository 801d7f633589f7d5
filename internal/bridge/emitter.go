package bridge

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
	obs "github.com/house-360-vn/virtual-studio-web-remove-background/internal/infrastructure/observability"
)

// Emitter translates user intents into the outbound command envelope. Every
// method is a silent no-op when the session is not ready; the return value
// reports whether the command was actually sent.
type Emitter struct {
	reg *Registry
	log zerolog.Logger
	met *obs.Metrics
	ns  string
}

func NewEmitter(reg *Registry, log zerolog.Logger, met *obs.Metrics, namespace string) *Emitter {
	if namespace == "" {
		namespace = domain.Namespace
	}
	return &Emitter{reg: reg, log: log, met: met, ns: namespace}
}

func (e *Emitter) send(cmd domain.Command) bool {
	if !e.reg.IsReady() {
		e.log.Debug().Str("type", cmd.Type).Str("action", cmd.Action).Msg("emitter: dropped, session not ready")
		return false
	}
	cmd.NS = e.ns
	if err := e.reg.Send(cmd); err != nil {
		e.log.Warn().Err(err).Str("type", cmd.Type).Str("action", cmd.Action).Msg("emitter: send failed")
		return false
	}
	e.met.CommandsSentTotal.WithLabelValues(cmd.Type, cmd.Action).Inc()
	return true
}

func (e *Emitter) LoadCar(carID string) bool {
	return e.send(domain.Command{Type: domain.TypeCar, Action: domain.ActionLoadByID, CarID: carID})
}

func (e *Emitter) SetColor(carID, hex string) bool {
	return e.send(domain.Command{Type: domain.TypeCar, Action: domain.ActionSetColor, CarID: carID, Hex: hex})
}

func (e *Emitter) SetWheel(carID, wheelID string) bool {
	return e.send(domain.Command{Type: domain.TypeCar, Action: domain.ActionSetWheel, CarID: carID, WheelID: wheelID})
}

func (e *Emitter) ChangeBackground(backgroundID, image string) bool {
	return e.send(domain.Command{
		Type: domain.TypeEnvironment, Action: domain.ActionChangeBackground,
		BackgroundID: backgroundID, BackgroundImage: image,
	})
}

func (e *Emitter) ChangeDayNight(isDay bool, image string) bool {
	return e.send(domain.Command{
		Type: domain.TypeEnvironment, Action: domain.ActionChangeDayNight,
		IsDay: &isDay, BackgroundImage: image,
	})
}

func (e *Emitter) TakeScreenshot(withBackground bool) bool {
	action := domain.ActionTakeScreenshot
	if !withBackground {
		action = domain.ActionTakeScreenshotNoBackground
	}
	return e.send(domain.Command{Type: domain.TypeSystem, Action: action})
}

func (e *Emitter) SetStreamURL(url string) bool {
	return e.send(domain.Command{Type: domain.TypeSystem, Action: domain.ActionSetCloudflareURL, URL: url})
}

func (e *Emitter) GetSequences() bool {
	return e.send(domain.Command{Type: domain.TypeSequence, Action: domain.ActionGetSequences})
}

func (e *Emitter) PlaySequence(ids []string) bool {
	return e.send(domain.Command{
		Type: domain.TypeSequence, Action: domain.ActionPlaySequence,
		Data: map[string]any{"sequenceIds": ids},
	})
}

func (e *Emitter) StopSequence() bool {
	return e.send(domain.Command{Type: domain.TypeSequence, Action: domain.ActionStopSequence})
}

func (e *Emitter) StartRender(ids []string) bool {
	return e.send(domain.Command{
		Type: domain.TypeRender, Action: domain.ActionStartRender,
		Data: map[string]any{"sequenceIds": ids},
	})
}

// CancelRender carries its payload as a JSON-encoded string: the engine-side
// decoder expects a string for this one action. Do not "fix" this asymmetry.
func (e *Emitter) CancelRender(jobID string) bool {
	payload, _ := json.Marshal(map[string]string{"jobId": jobID})
	return e.send(domain.Command{
		Type: domain.TypeRender, Action: domain.ActionCancelRender,
		Data: string(payload),
	})
}
