package bridge

import (
	"context"
	"errors"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/adapters/decoders/engine"
)

var ErrEmptyQueue = errors.New("selection queue is empty")

// RefreshSequences re-runs discovery for the current level.
func (b *Bridge) RefreshSequences() bool {
	return b.emit.GetSequences()
}

// ToggleSequence appends an absent id to the selection queue and removes a
// present one. Only currently known sequence ids may enter the queue; stale
// entries from a previous level are not proactively pruned here.
func (b *Bridge) ToggleSequence(seqID string) {
	b.mu.Lock()
	for i, qid := range b.queue {
		if qid == seqID {
			b.queue = append(b.queue[:i], b.queue[i+1:]...)
			b.mu.Unlock()
			b.emitNotify("queue_changed", seqID)
			return
		}
	}
	known := false
	for _, s := range b.sequences {
		if s.ID == seqID {
			known = true
			break
		}
	}
	if known {
		b.queue = append(b.queue, seqID)
	}
	b.mu.Unlock()
	if known {
		b.emitNotify("queue_changed", seqID)
	}
}

// RemoveQueued drops the queue entry at the given position.
func (b *Bridge) RemoveQueued(index int) {
	b.mu.Lock()
	if index < 0 || index >= len(b.queue) {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue[:index], b.queue[index+1:]...)
	b.mu.Unlock()
	b.emitNotify("queue_changed", "")
}

// MoveQueued removes the element at from and reinserts it at to.
func (b *Bridge) MoveQueued(from, to int) {
	b.mu.Lock()
	n := len(b.queue)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		b.mu.Unlock()
		return
	}
	item := b.queue[from]
	rest := append(b.queue[:from], b.queue[from+1:]...)
	b.queue = append(rest[:to], append([]string{item}, rest[to:]...)...)
	b.mu.Unlock()
	b.emitNotify("queue_changed", "")
}

// Play starts playback of the queued sequences. Playing is entered on the
// engine acknowledgment, not optimistically.
func (b *Bridge) Play() error {
	b.mu.Lock()
	if len(b.queue) == 0 {
		b.mu.Unlock()
		return ErrEmptyQueue
	}
	ids := append([]string(nil), b.queue...)
	b.mu.Unlock()
	if !b.emit.PlaySequence(ids) {
		return ErrNotReady
	}
	return nil
}

// Stop halts playback; always available while the session is ready.
func (b *Bridge) Stop() error {
	if !b.emit.StopSequence() {
		return ErrNotReady
	}
	return nil
}

// handleSequencesDiscovered resolves Sequence/GetSequences. Discovery
// failure clears the list; an unparseable payload drops the message.
func (b *Bridge) handleSequencesDiscovered(env *engine.Envelope) {
	if !env.OK() {
		b.mu.Lock()
		b.sequences = nil
		b.mu.Unlock()
		b.log.Warn().Str("status", env.Status).Msg("sequence: discovery failed, list cleared")
		b.emitNotify("sequences_updated", "")
		return
	}
	payload, ok := engine.DecodePayload(env.Data)
	if !ok {
		b.log.Warn().Msg("sequence: unparseable discovery payload dropped")
		b.met.EventsDroppedTotal.WithLabelValues("unparseable_payload").Inc()
		return
	}
	seqs := engine.NormalizeSequences(payload, env)
	b.mu.Lock()
	b.sequences = seqs
	b.mu.Unlock()
	b.log.Info().Int("count", len(seqs)).Msg("sequence: list updated")
	b.emitNotify("sequences_updated", "")
}

func (b *Bridge) handlePlayResult(env *engine.Envelope) {
	b.mu.Lock()
	if env.OK() {
		_ = b.playFSM.Event(context.Background(), evPlay)
	} else {
		b.playFSM.SetState(playStopped)
	}
	b.mu.Unlock()
	if !env.OK() {
		b.log.Warn().Str("status", env.Status).Msg("sequence: play failed")
	}
	b.emitNotify("playback_changed", "")
}

func (b *Bridge) handleStopResult(env *engine.Envelope) {
	b.mu.Lock()
	_ = b.playFSM.Event(context.Background(), evStop)
	b.mu.Unlock()
	b.emitNotify("playback_changed", "")
}

// handleSequenceFinished resets playback regardless of what triggered play;
// the engine sends it unprompted.
func (b *Bridge) handleSequenceFinished(env *engine.Envelope) {
	b.mu.Lock()
	b.playFSM.SetState(playStopped)
	b.mu.Unlock()
	b.log.Debug().Msg("sequence: finished")
	b.emitNotify("playback_changed", "")
}
