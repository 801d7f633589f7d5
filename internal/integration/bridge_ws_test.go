package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/adapters/storage/memory"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/bridge"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
	obs "github.com/house-360-vn/virtual-studio-web-remove-background/internal/infrastructure/observability"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/usecase"
)

// fakeEngine is a minimal websocket peer acknowledging the commands the
// bridge emits during a car-load round trip.
type fakeEngine struct {
	mu       sync.Mutex
	received []domain.Command
}

func (f *fakeEngine) handler() http.HandlerFunc {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for {
			var cmd domain.Command
			if err := conn.ReadJSON(&cmd); err != nil {
				_ = conn.Close()
				return
			}
			f.mu.Lock()
			f.received = append(f.received, cmd)
			f.mu.Unlock()

			ack := map[string]any{"ns": cmd.NS, "type": cmd.Type, "action": cmd.Action, "status": "OK"}
			switch cmd.Action {
			case domain.ActionLoadByID:
				ack["carId"] = cmd.CarID
			case domain.ActionTakeScreenshot:
				ack["data"] = "https://cdn.example/shots/it.png"
			}
			_ = conn.WriteJSON(ack)
		}
	}
}

func (f *fakeEngine) count(typ, action string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.received {
		if c.Type == typ && c.Action == action {
			n++
		}
	}
	return n
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting: %s", msg)
}

func TestBridgeOverWebsocket(t *testing.T) {
	engine := &fakeEngine{}
	srv := httptest.NewServer(engine.handler())
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	log := zerolog.Nop()
	metrics := obs.NewMetrics()
	store := memory.NewStore(10, memory.DefaultCars(), memory.DefaultBackgrounds())
	studio := usecase.NewStudioService(store, store)

	b := bridge.New(bridge.Config{
		StreamEndpointURL: "https://stream.example/live",
		URLHandoffDelay:   20 * time.Millisecond,
		ReadyPollInterval: 10 * time.Millisecond,
		ReconnectDelay:    50 * time.Millisecond,
		ReconnectMaxDelay: 100 * time.Millisecond,
	}, log, metrics, studio, func(ctx context.Context) (bridge.Transport, error) {
		return bridge.DialEngine(ctx, wsURL, log)
	})
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.Start(ctx)
	waitFor(t, func() bool { return b.Registry().IsReady() }, "session ready")

	if err := b.SelectCar("vf8"); err != nil {
		t.Fatalf("SelectCar: %v", err)
	}
	waitFor(t, func() bool { return b.State().CarLoad == domain.CarLoaded }, "car loaded")

	// the streaming endpoint goes out once, after the load settled
	waitFor(t, func() bool {
		return engine.count(domain.TypeSystem, domain.ActionSetCloudflareURL) == 1
	}, "stream endpoint handoff")
	if got := engine.count(domain.TypeCar, domain.ActionLoadByID); got != 1 {
		t.Fatalf("LoadById sent %d times, want 1", got)
	}

	if !b.CaptureScreenshot(true) {
		t.Fatal("capture command not sent")
	}
	waitFor(t, func() bool {
		shots, _ := studio.ListScreenshots(context.Background())
		return len(shots) == 1
	}, "screenshot stored from engine reply")
}
