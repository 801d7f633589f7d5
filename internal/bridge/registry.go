package bridge

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
	obs "github.com/house-360-vn/virtual-studio-web-remove-background/internal/infrastructure/observability"
)

var ErrNotReady = errors.New("engine session not ready")

// Registry owns the single engine session handle and the connectivity tuple.
// Readiness requires both a registered handle and a verified transport-level
// connected signal; handle presence alone never implies a working path.
//
// Signals from a superseded handle are discarded, so a slow teardown cannot
// clobber the readiness of its replacement.
type Registry struct {
	log        zerolog.Logger
	met        *obs.Metrics
	downstream TransportListener

	mu             sync.Mutex
	current        Transport
	transportReady bool
}

func NewRegistry(log zerolog.Logger, met *obs.Metrics, downstream TransportListener) *Registry {
	return &Registry{log: log, met: met, downstream: downstream}
}

// Register installs a new handle, tearing down any previous one first. Close
// errors on the old handle are logged and swallowed; a failed teardown never
// blocks the replacement. Register(nil) clears the handle and all flags.
// Listeners are attached before Register returns.
func (r *Registry) Register(t Transport) {
	r.mu.Lock()
	old := r.current
	r.current = t
	r.transportReady = false
	r.mu.Unlock()
	r.met.EngineConnected.Set(0)

	if old != nil && old != t {
		if err := old.Close(); err != nil {
			r.log.Warn().Err(err).Msg("registry: close of previous session failed")
		}
	}
	if t != nil {
		t.SetListener(&sessionListener{reg: r, t: t})
	}
}

func (r *Registry) Current() Transport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Registry) IsReady() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil && r.transportReady
}

// Send forwards a command to the current session. Callers are expected to
// check IsReady first; a not-ready send returns ErrNotReady.
func (r *Registry) Send(cmd domain.Command) error {
	r.mu.Lock()
	t := r.current
	ready := r.transportReady
	r.mu.Unlock()
	if t == nil || !ready {
		return ErrNotReady
	}
	return t.Send(cmd)
}

// sessionListener scopes transport signals to the handle that produced them.
type sessionListener struct {
	reg *Registry
	t   Transport
}

func (l *sessionListener) stale() bool {
	l.reg.mu.Lock()
	defer l.reg.mu.Unlock()
	return l.reg.current != l.t
}

func (l *sessionListener) OnConnected() {
	l.reg.mu.Lock()
	if l.reg.current != l.t {
		l.reg.mu.Unlock()
		return
	}
	l.reg.transportReady = true
	l.reg.mu.Unlock()
	l.reg.met.EngineConnected.Set(1)
	l.reg.downstream.OnConnected()
}

func (l *sessionListener) OnDisconnected(err error) {
	l.reg.mu.Lock()
	if l.reg.current != l.t {
		l.reg.mu.Unlock()
		return
	}
	l.reg.transportReady = false
	l.reg.mu.Unlock()
	l.reg.met.EngineConnected.Set(0)
	l.reg.downstream.OnDisconnected(err)
}

func (l *sessionListener) OnDataChannelError(err error) {
	l.reg.mu.Lock()
	if l.reg.current != l.t {
		l.reg.mu.Unlock()
		return
	}
	l.reg.transportReady = false
	l.reg.mu.Unlock()
	l.reg.met.EngineConnected.Set(0)
	l.reg.downstream.OnDataChannelError(err)
}

func (l *sessionListener) OnVideoActivity() {
	if l.stale() {
		return
	}
	l.reg.downstream.OnVideoActivity()
}

func (l *sessionListener) OnInfoMessage(raw []byte) {
	if l.stale() {
		return
	}
	l.reg.downstream.OnInfoMessage(raw)
}
