package bridge

import (
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/adapters/decoders/engine"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
	"github.com/house-360-vn/virtual-studio-web-remove-background/pkg/shared/redact"
)

// dispatch is the response demultiplexer: parse the outer envelope, reject
// foreign namespaces, route by (type, action) to exactly one workflow
// handler. Unmatched pairs are silently ignored; a failure in one message
// never prevents processing of the next.
func (b *Bridge) dispatch(raw []byte) {
	env, err := engine.ParseEnvelope(raw)
	if err != nil {
		b.log.Warn().Err(err).Msg("demux: dropping malformed envelope")
		b.met.EventsDroppedTotal.WithLabelValues("bad_envelope").Inc()
		return
	}
	if env.NS != b.cfg.Namespace {
		b.met.EventsDroppedTotal.WithLabelValues("foreign_ns").Inc()
		return
	}
	b.met.EventsReceivedTotal.WithLabelValues(env.Type, env.Action).Inc()
	b.log.Debug().
		Str("type", env.Type).Str("action", env.Action).Str("status", env.Status).
		Str("payload", redact.JSON(string(raw))).
		Msg("demux: engine event")

	switch env.Type {
	case domain.TypeCar:
		switch env.Action {
		case domain.ActionLoadByID:
			b.handleCarLoadResult(&env)
		case domain.ActionSetColor, domain.ActionSetWheel:
			b.handleSelectionConfirm(&env)
		}
	case domain.TypeEnvironment:
		switch env.Action {
		case domain.ActionChangeBackground:
			b.handleBackgroundChanged(&env)
		case domain.ActionChangeDayNight:
			b.handleDayNightChanged(&env)
		}
	case domain.TypeSystem:
		switch env.Action {
		case domain.ActionTakeScreenshot:
			b.handleScreenshot(&env, true)
		case domain.ActionTakeScreenshotNoBackground:
			b.handleScreenshot(&env, false)
		}
	case domain.TypeSequence:
		switch env.Action {
		case domain.ActionGetSequences:
			b.handleSequencesDiscovered(&env)
		case domain.ActionPlaySequence:
			b.handlePlayResult(&env)
		case domain.ActionStopSequence:
			b.handleStopResult(&env)
		case domain.ActionSequenceFinished:
			b.handleSequenceFinished(&env)
		}
	case domain.TypeRender:
		switch env.Action {
		case domain.ActionRenderStarted:
			b.handleRenderStarted(&env)
		case domain.ActionRenderProgress:
			b.handleRenderProgress(&env)
		case domain.ActionRenderComplete:
			b.handleRenderComplete(&env)
		case domain.ActionRenderFailed:
			b.handleRenderFailed(&env)
		case domain.ActionRenderCancelled:
			b.handleRenderCancelled(&env)
		}
	}
}

// payloadMap decodes the semantic payload and flattens it to a field map.
// The bool reports parseability: an unparseable string payload aborts the
// message instead of fabricating data. A nil map with ok=true simply means
// the payload was absent or not an object.
func payloadMap(env *engine.Envelope) (map[string]any, bool) {
	payload, ok := engine.DecodePayload(env.Data)
	if !ok {
		return nil, false
	}
	m, _ := payload.(map[string]any)
	return m, true
}
