package bridge

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	obs "github.com/house-360-vn/virtual-studio-web-remove-background/internal/infrastructure/observability"
)

type recordingListener struct {
	connected    int
	disconnected int
	dataErrors   int
	infos        [][]byte
}

func (r *recordingListener) OnConnected()             { r.connected++ }
func (r *recordingListener) OnDisconnected(err error) { r.disconnected++ }
func (r *recordingListener) OnDataChannelError(error) { r.dataErrors++ }
func (r *recordingListener) OnVideoActivity()         {}
func (r *recordingListener) OnInfoMessage(raw []byte) { r.infos = append(r.infos, raw) }

func newTestRegistry(down TransportListener) *Registry {
	return NewRegistry(zerolog.Nop(), obs.NewMetrics(), down)
}

func TestRegistryReadyNeedsConnectedSignal(t *testing.T) {
	reg := newTestRegistry(&recordingListener{})
	ft := &fakeTransport{}
	reg.Register(ft)
	if reg.IsReady() {
		t.Fatal("handle alone must not imply readiness")
	}
	ft.Start()
	if !reg.IsReady() {
		t.Fatal("expected ready after connected signal")
	}
	ft.listener.OnDisconnected(errors.New("gone"))
	if reg.IsReady() {
		t.Fatal("still ready after disconnect")
	}
}

func TestRegistryReplaceClosesOldEvenOnError(t *testing.T) {
	reg := newTestRegistry(&recordingListener{})
	t1 := &fakeTransport{closeErr: errors.New("teardown exploded")}
	t2 := &fakeTransport{}
	reg.Register(t1)
	reg.Register(t2)
	if t1.closes != 1 {
		t.Fatalf("old transport closes = %d, want 1", t1.closes)
	}
	t2.Start()
	if !reg.IsReady() {
		t.Fatal("replacement must become ready despite old close error")
	}
}

func TestRegistryStaleSignalsDiscarded(t *testing.T) {
	down := &recordingListener{}
	reg := newTestRegistry(down)
	t1 := &fakeTransport{}
	reg.Register(t1)
	stale := t1.listener

	t2 := &fakeTransport{}
	reg.Register(t2)
	t2.Start()
	if !reg.IsReady() {
		t.Fatal("expected ready on new handle")
	}

	// signals from the replaced handle must not clobber the new session
	stale.OnDisconnected(errors.New("late teardown"))
	stale.OnInfoMessage([]byte(`{}`))
	if !reg.IsReady() {
		t.Fatal("stale disconnect cleared readiness of replacement")
	}
	if down.disconnected != 0 {
		t.Fatalf("stale disconnect forwarded downstream %d times", down.disconnected)
	}
	if len(down.infos) != 0 {
		t.Fatal("stale info message forwarded downstream")
	}
}

func TestRegistrySendNotReady(t *testing.T) {
	reg := newTestRegistry(&recordingListener{})
	if err := reg.Send(testCommand()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("err = %v, want ErrNotReady", err)
	}
	ft := &fakeTransport{}
	reg.Register(ft)
	if err := reg.Send(testCommand()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("err before connected signal = %v, want ErrNotReady", err)
	}
	ft.Start()
	if err := reg.Send(testCommand()); err != nil {
		t.Fatalf("Send after ready: %v", err)
	}
}

func TestRegistryClearDropsHandle(t *testing.T) {
	reg := newTestRegistry(&recordingListener{})
	ft := &fakeTransport{}
	reg.Register(ft)
	ft.Start()
	reg.Register(nil)
	if ft.closes != 1 {
		t.Fatalf("closes = %d, want 1", ft.closes)
	}
	if reg.IsReady() {
		t.Fatal("ready after clear")
	}
}
