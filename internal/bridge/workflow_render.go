package bridge

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/adapters/decoders/engine"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
	"github.com/house-360-vn/virtual-studio-web-remove-background/pkg/shared/id"
)

var ErrNoActiveRender = errors.New("no render in progress")

// StartRender kicks off an engine-side render of the queued sequences. The
// job record is created locally as rendering the instant the request is
// made (optimistic); RenderStarted later assigns the authoritative id. When
// sequences are still playing, a stop goes out first and the render command
// is deferred briefly so the engine never sees the two requests racing.
func (b *Bridge) StartRender() error {
	if !b.reg.IsReady() {
		return ErrNotReady
	}
	b.mu.Lock()
	if len(b.queue) == 0 {
		b.mu.Unlock()
		return ErrEmptyQueue
	}
	ids := append([]string(nil), b.queue...)
	job := &domain.RenderJob{
		ID:         id.NewWithPrefix("render"),
		SequenceID: strings.Join(ids, ","),
		Status:     domain.RenderRendering,
		StartedAt:  time.Now().UTC(),
	}
	// a new render always replaces the tracked job
	b.render = job
	if b.playFSM.Current() == playPlaying {
		b.emit.StopSequence()
		b.scheduleLocked(timerRenderDefer, b.cfg.StopBeforeRenderDelay, func() {
			b.emit.StartRender(ids)
		})
	} else {
		b.emit.StartRender(ids)
	}
	jobID := job.ID
	b.mu.Unlock()
	b.emitNotify("render_started", jobID)
	return nil
}

// CancelRender optimistically flips the tracked job to failed before the
// engine confirms; there is no rollback if the engine ignores the request.
func (b *Bridge) CancelRender() error {
	b.mu.Lock()
	job := b.render
	if job == nil || job.Status != domain.RenderRendering {
		b.mu.Unlock()
		return ErrNoActiveRender
	}
	job.Status = domain.RenderFailed
	job.ErrorMessage = "cancelled"
	b.emit.CancelRender(job.ID)
	jobID := job.ID
	b.mu.Unlock()
	b.met.RendersTotal.WithLabelValues("cancelled").Inc()
	b.emitNotify("render_failed", jobID)
	return nil
}

// ensureRenderJobLocked returns the tracked job, fabricating one for partial
// events that arrive when nothing is tracked: a timestamp-based id and an
// "unknown" sequence rather than a dropped update.
func (b *Bridge) ensureRenderJobLocked() *domain.RenderJob {
	if b.render == nil {
		b.render = &domain.RenderJob{
			ID:         fmt.Sprintf("render-%d", time.Now().UnixMilli()),
			SequenceID: "unknown",
			Status:     domain.RenderRendering,
			StartedAt:  time.Now().UTC(),
		}
	}
	return b.render
}

// applyRenderIdentity re-derives jobId/sequenceId from the payload when
// present; absent fields inherit from the tracked job. Every render handler
// does this independently to tolerate partial messages.
func applyRenderIdentity(job *domain.RenderJob, m map[string]any) {
	if jid := engine.Str(m, "jobId", "id", "JobId"); jid != "" {
		job.ID = jid
	}
	if sid := engine.Str(m, "sequenceId", "SequenceId"); sid != "" {
		job.SequenceID = sid
	}
}

func (b *Bridge) handleRenderStarted(env *engine.Envelope) {
	m, ok := payloadMap(env)
	if !ok {
		b.met.EventsDroppedTotal.WithLabelValues("unparseable_payload").Inc()
		return
	}
	b.mu.Lock()
	job := b.ensureRenderJobLocked()
	if job.Terminal() {
		b.mu.Unlock()
		return
	}
	if !env.OK() {
		job.Status = domain.RenderFailed
		job.ErrorMessage = "render failed to start"
		jobID := job.ID
		b.mu.Unlock()
		b.met.RendersTotal.WithLabelValues("failed").Inc()
		b.emitNotify("render_failed", jobID)
		return
	}
	applyRenderIdentity(job, m)
	job.Status = domain.RenderRendering
	jobID := job.ID
	b.mu.Unlock()
	b.log.Info().Str("jobId", jobID).Msg("render: started")
	b.emitNotify("render_progress", jobID)
}

func (b *Bridge) handleRenderProgress(env *engine.Envelope) {
	m, ok := payloadMap(env)
	if !ok {
		b.met.EventsDroppedTotal.WithLabelValues("unparseable_payload").Inc()
		return
	}
	b.mu.Lock()
	job := b.ensureRenderJobLocked()
	if job.Terminal() {
		// late progress after completion or optimistic cancel
		b.mu.Unlock()
		return
	}
	applyRenderIdentity(job, m)
	// last-write-wins snapshot; the engine does not guarantee monotonicity
	job.Progress = int(engine.Num(m, "progress", "Progress"))
	job.Status = domain.RenderRendering
	jobID := job.ID
	b.mu.Unlock()
	b.emitNotify("render_progress", jobID)
}

func (b *Bridge) handleRenderComplete(env *engine.Envelope) {
	m, ok := payloadMap(env)
	if !ok {
		b.met.EventsDroppedTotal.WithLabelValues("unparseable_payload").Inc()
		return
	}
	b.mu.Lock()
	job := b.ensureRenderJobLocked()
	if job.Terminal() {
		// completion after optimistic cancel must not resurrect the job
		b.mu.Unlock()
		return
	}
	if !env.OK() {
		b.finishRenderLocked(job, engine.Str(m, "error", "message"), "failed")
		return
	}
	applyRenderIdentity(job, m)
	job.Status = domain.RenderComplete
	job.Progress = 100
	job.DownloadURL = engine.Str(m, "downloadUrl", "url", "DownloadUrl")
	jobID := job.ID
	b.mu.Unlock()
	b.met.RendersTotal.WithLabelValues("complete").Inc()
	b.log.Info().Str("jobId", jobID).Msg("render: complete")
	b.emitNotify("render_complete", jobID)
}

func (b *Bridge) handleRenderFailed(env *engine.Envelope) {
	m, ok := payloadMap(env)
	if !ok {
		b.met.EventsDroppedTotal.WithLabelValues("unparseable_payload").Inc()
		return
	}
	b.mu.Lock()
	job := b.ensureRenderJobLocked()
	if job.Status == domain.RenderComplete {
		b.mu.Unlock()
		return
	}
	if job.Status == domain.RenderFailed {
		// already failed (possibly the optimistic cancel); keep it failed
		b.mu.Unlock()
		return
	}
	applyRenderIdentity(job, m)
	b.finishRenderLocked(job, engine.Str(m, "error", "message", "reason"), "failed")
}

// handleRenderCancelled confirms a cancel. The optimistic failed state set
// by CancelRender must not regress, so an already-terminal job is left
// untouched.
func (b *Bridge) handleRenderCancelled(env *engine.Envelope) {
	m, ok := payloadMap(env)
	if !ok {
		b.met.EventsDroppedTotal.WithLabelValues("unparseable_payload").Inc()
		return
	}
	b.mu.Lock()
	job := b.ensureRenderJobLocked()
	if job.Terminal() {
		b.mu.Unlock()
		return
	}
	applyRenderIdentity(job, m)
	msg := engine.Str(m, "error", "message", "reason")
	if msg == "" {
		msg = "cancelled"
	}
	b.finishRenderLocked(job, msg, "cancelled")
}

// finishRenderLocked marks the job failed and releases the lock.
func (b *Bridge) finishRenderLocked(job *domain.RenderJob, msg, outcome string) {
	if msg == "" {
		msg = "render failed"
	}
	job.Status = domain.RenderFailed
	job.ErrorMessage = msg
	jobID := job.ID
	b.mu.Unlock()
	b.met.RendersTotal.WithLabelValues(outcome).Inc()
	b.log.Warn().Str("jobId", jobID).Str("reason", msg).Msg("render: failed")
	b.emitNotify("render_failed", jobID)
}
