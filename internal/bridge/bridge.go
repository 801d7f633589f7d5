package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
	obs "github.com/house-360-vn/virtual-studio-web-remove-background/internal/infrastructure/observability"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/usecase"
	"github.com/house-360-vn/virtual-studio-web-remove-background/pkg/shared/redact"
)

// UI modes. Sequences and rendering only matter in video mode.
const (
	ModePhoto = "photo"
	ModeVideo = "video"
)

// Config carries the bridge's named timing knobs. The transport gives no
// per-command acknowledgment correlation, so cross-command orderings
// (load-then-URL-handoff, stop-then-render, background-then-resequence)
// rely on these fixed delays.
type Config struct {
	Namespace             string
	StreamEndpointURL     string
	DefaultCarID          string
	URLHandoffDelay       time.Duration
	StopBeforeRenderDelay time.Duration
	ResequenceDelay       time.Duration
	ReadyPollInterval     time.Duration
	ReconnectDelay        time.Duration
	ReconnectMaxDelay     time.Duration
}

func (c *Config) applyDefaults() {
	if c.Namespace == "" {
		c.Namespace = domain.Namespace
	}
	if c.URLHandoffDelay <= 0 {
		c.URLHandoffDelay = time.Second
	}
	if c.StopBeforeRenderDelay <= 0 {
		c.StopBeforeRenderDelay = 500 * time.Millisecond
	}
	if c.ResequenceDelay <= 0 {
		c.ResequenceDelay = 1500 * time.Millisecond
	}
	if c.ReadyPollInterval <= 0 {
		c.ReadyPollInterval = 500 * time.Millisecond
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = 2 * time.Second
	}
	if c.ReconnectMaxDelay <= 0 {
		c.ReconnectMaxDelay = 30 * time.Second
	}
}

// NotifyFunc receives state-change notifications for UI fan-out.
type NotifyFunc func(event, ref string)

// Bridge is the event bridge between the browser-facing API and the engine
// streaming channel. All workflow state is guarded by one mutex: every
// mutation — user intent, inbound event, fired timer — is serialized, so
// correctness rests on idempotent, order-tolerant handling rather than
// fine-grained locking.
type Bridge struct {
	cfg    Config
	log    zerolog.Logger
	met    *obs.Metrics
	studio *usecase.StudioService

	reg  *Registry
	emit *Emitter
	sup  *Supervisor
	dial Dialer

	notifyMu sync.RWMutex
	notify   NotifyFunc

	mu         sync.Mutex
	closed     bool
	mode       string
	carID      string
	carGen     int
	carFSM     *fsm.FSM
	colorHex   string
	wheelID    string
	background domain.BackgroundOption
	isDay      bool
	sequences  []domain.Sequence
	queue      []string
	playFSM    *fsm.FSM
	render     *domain.RenderJob
	timers     map[string]*time.Timer
}

func New(cfg Config, log zerolog.Logger, met *obs.Metrics, studio *usecase.StudioService, dial Dialer) *Bridge {
	cfg.applyDefaults()
	b := &Bridge{
		cfg:    cfg,
		log:    log,
		met:    met,
		studio: studio,
		dial:   dial,
		mode:   ModePhoto,
		carID:  cfg.DefaultCarID,
		isDay:  true,
		timers: map[string]*time.Timer{},
	}
	b.carFSM = newCarLoadFSM()
	b.playFSM = newPlaybackFSM()
	b.reg = NewRegistry(log, met, b)
	b.emit = NewEmitter(b.reg, log, met, cfg.Namespace)
	b.sup = NewSupervisor(log, met, cfg.ReconnectDelay, cfg.ReconnectMaxDelay, b.connectOnce)
	return b
}

// Registry exposes the connection registry, mainly for readiness queries.
func (b *Bridge) Registry() *Registry { return b.reg }

// SetNotifier installs the UI fan-out hook.
func (b *Bridge) SetNotifier(fn NotifyFunc) {
	b.notifyMu.Lock()
	b.notify = fn
	b.notifyMu.Unlock()
}

func (b *Bridge) emitNotify(event, ref string) {
	b.notifyMu.RLock()
	fn := b.notify
	b.notifyMu.RUnlock()
	if fn != nil {
		fn(event, ref)
	}
}

// Start kicks off the initial engine connection and the readiness poll. The
// poll, rather than the connected signal alone, decides when to issue the
// initial car load: a handler installed after the fact could otherwise miss
// an already-fired connected signal.
func (b *Bridge) Start(ctx context.Context) {
	b.sup.Kick()
	go b.readyLoop(ctx)
}

func (b *Bridge) readyLoop(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.ReadyPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.pollReady()
		}
	}
}

func (b *Bridge) pollReady() {
	if !b.reg.IsReady() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.carID == "" || b.carFSM.Current() != string(domain.CarNotLoaded) {
		return
	}
	b.requestCarLoadLocked()
}

// connectOnce dials a fresh session, registers it (closing any prior handle)
// and resets session-scoped workflow state so the readiness poll re-issues
// the car load on the new level.
func (b *Bridge) connectOnce() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	t, err := b.dial(ctx)
	if err != nil {
		return err
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = t.Close()
		return nil
	}
	b.resetSessionStateLocked()
	b.mu.Unlock()

	b.reg.Register(t)
	t.Start()
	return nil
}

// resetSessionStateLocked drops state scoped to one engine session.
func (b *Bridge) resetSessionStateLocked() {
	b.cancelTimersLocked()
	b.carGen++
	b.carFSM.SetState(string(domain.CarNotLoaded))
	b.playFSM.SetState(playStopped)
}

// Close tears the bridge down: pending timers, supervisor, session handle.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.cancelTimersLocked()
	b.mu.Unlock()

	b.sup.Stop()
	b.reg.Register(nil)
	b.log.Info().Msg("bridge: stopped")
}

// SetMode switches the UI between photo and video workflows.
func (b *Bridge) SetMode(mode string) {
	if mode != ModePhoto && mode != ModeVideo {
		return
	}
	b.mu.Lock()
	b.mode = mode
	b.mu.Unlock()
}

// State is the externally observable snapshot of every workflow.
type State struct {
	Ready        bool                `json:"ready"`
	Mode         string              `json:"mode"`
	CarID        string              `json:"carId,omitempty"`
	CarLoad      domain.CarLoadState `json:"carLoad"`
	ColorHex     string              `json:"colorHex,omitempty"`
	WheelID      string              `json:"wheelId,omitempty"`
	BackgroundID string              `json:"backgroundId,omitempty"`
	IsDay        bool                `json:"isDay"`
	Sequences    []domain.Sequence   `json:"sequences"`
	Queue        []string            `json:"queue"`
	IsPlaying    bool                `json:"isPlaying"`
	Render       *domain.RenderJob   `json:"render,omitempty"`
}

func (b *Bridge) State() State {
	ready := b.reg.IsReady()
	b.mu.Lock()
	defer b.mu.Unlock()
	st := State{
		Ready:        ready,
		Mode:         b.mode,
		CarID:        b.carID,
		CarLoad:      domain.CarLoadState(b.carFSM.Current()),
		ColorHex:     b.colorHex,
		WheelID:      b.wheelID,
		BackgroundID: b.background.ID,
		IsDay:        b.isDay,
		Sequences:    append([]domain.Sequence(nil), b.sequences...),
		Queue:        append([]string(nil), b.queue...),
		IsPlaying:    b.playFSM.Current() == playPlaying,
	}
	if st.Sequences == nil {
		st.Sequences = []domain.Sequence{}
	}
	if st.Queue == nil {
		st.Queue = []string{}
	}
	if b.render != nil {
		job := *b.render
		st.Render = &job
	}
	return st
}

// Timer names. One pending timer per name; scheduling replaces.
const (
	timerURLHandoff  = "url_handoff"
	timerResequence  = "resequence"
	timerRenderDefer = "render_defer"
)

func (b *Bridge) scheduleLocked(name string, d time.Duration, fn func()) {
	if t, ok := b.timers[name]; ok {
		t.Stop()
	}
	gen := b.carGen
	b.timers[name] = time.AfterFunc(d, func() {
		b.mu.Lock()
		stale := b.closed || gen != b.carGen
		if !stale {
			delete(b.timers, name)
		}
		b.mu.Unlock()
		if stale {
			return
		}
		fn()
	})
}

func (b *Bridge) cancelTimersLocked() {
	for name, t := range b.timers {
		t.Stop()
		delete(b.timers, name)
	}
}

// TransportListener — signals arrive already scoped to the current session
// by the registry.

func (b *Bridge) OnConnected() {
	b.log.Info().Msg("bridge: engine session connected")
	b.emitNotify("connected", "")
}

func (b *Bridge) OnDisconnected(err error) {
	b.log.Warn().Err(err).Msg("bridge: engine session lost")
	b.mu.Lock()
	// playback falls back to stopped on transport loss; render stays as-is
	b.playFSM.SetState(playStopped)
	b.mu.Unlock()
	b.emitNotify("disconnected", "")
	b.sup.ScheduleReconnect()
}

func (b *Bridge) OnDataChannelError(err error) {
	b.log.Warn().Err(err).Msg("bridge: data channel error")
	b.emitNotify("disconnected", "")
	b.sup.ScheduleReconnect()
}

func (b *Bridge) OnVideoActivity() {
	b.log.Debug().Msg("bridge: video activity")
}

func (b *Bridge) OnInfoMessage(raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			// one bad message must not take down the stream
			b.log.Error().Interface("panic", r).Str("payload", redact.JSON(string(raw))).Msg("bridge: handler panic recovered")
		}
	}()
	b.dispatch(raw)
}
