package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/adapters/storage/memory"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/bridge"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/genmedia"
	cfgpkg "github.com/house-360-vn/virtual-studio-web-remove-background/internal/infrastructure/config"
	obs "github.com/house-360-vn/virtual-studio-web-remove-background/internal/infrastructure/observability"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/usecase"
)

type stubTransport struct {
	listener bridge.TransportListener
}

func (s *stubTransport) Send(domain.Command) error              { return nil }
func (s *stubTransport) SetListener(l bridge.TransportListener) { s.listener = l }
func (s *stubTransport) Start() {
	if s.listener != nil {
		s.listener.OnConnected()
	}
}
func (s *stubTransport) Close() error { return nil }

type testEnv struct {
	srv    *httptest.Server
	bridge *bridge.Bridge
	studio *usecase.StudioService
}

func newTestEnv(t *testing.T, genURL string) *testEnv {
	t.Helper()
	return newTestEnvWith(t, genURL, nil)
}

func newTestEnvWith(t *testing.T, genURL string, tune func(*http.Server)) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	metrics := obs.NewMetrics()
	store := memory.NewStore(10, memory.DefaultCars(), memory.DefaultBackgrounds())
	studio := usecase.NewStudioService(store, store)

	st := &stubTransport{}
	br := bridge.New(bridge.Config{
		ReadyPollInterval: 10 * time.Millisecond,
	}, logger, metrics, studio, func(ctx context.Context) (bridge.Transport, error) {
		return st, nil
	})
	t.Cleanup(br.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	br.Start(ctx)
	deadline := time.Now().Add(2 * time.Second)
	for !br.Registry().IsReady() {
		if time.Now().After(deadline) {
			t.Fatal("bridge never became ready")
		}
		time.Sleep(2 * time.Millisecond)
	}

	gen := genmedia.New(genmedia.Options{
		BaseURL:      genURL,
		MaxAttempts:  1,
		BackoffBase:  time.Millisecond,
		PollInterval: time.Millisecond,
	}, logger, metrics)

	deps := &Deps{
		Cfg:     cfgpkg.Config{CORSAllowOrigin: "*"},
		Logger:  &logger,
		Metrics: metrics,
		Studio:  studio,
		Bridge:  br,
		Gen:     gen,
		Monitor: NewMonitorHub(),
	}
	br.SetNotifier(deps.Monitor.Notify)
	srv := httptest.NewUnstartedServer(NewRouter(deps))
	if tune != nil {
		tune(srv.Config)
	}
	srv.Start()
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, bridge: br, studio: studio}
}

func (e *testEnv) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, _ := json.Marshal(body)
	resp, err := http.Post(e.srv.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(e.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestHealthAndReady(t *testing.T) {
	e := newTestEnv(t, "")
	if resp := e.get(t, "/healthz"); resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz = %d", resp.StatusCode)
	}
	if resp := e.get(t, "/readyz"); resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz = %d", resp.StatusCode)
	}
}

func TestStateEndpoint(t *testing.T) {
	e := newTestEnv(t, "")
	var st bridge.State
	decodeBody(t, e.get(t, "/api/v1/state"), &st)
	if !st.Ready {
		t.Fatal("state should report ready")
	}
	if st.Mode != bridge.ModePhoto {
		t.Fatalf("mode = %q", st.Mode)
	}
}

func TestSelectCar(t *testing.T) {
	e := newTestEnv(t, "")
	resp := e.post(t, "/api/v1/car/select", map[string]string{"carId": "vf8"})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	var st bridge.State
	decodeBody(t, resp, &st)
	if st.CarID != "vf8" {
		t.Fatalf("carId = %q", st.CarID)
	}

	if resp := e.post(t, "/api/v1/car/select", map[string]string{"carId": "nope"}); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown car status = %d, want 404", resp.StatusCode)
	}
	if resp := e.post(t, "/api/v1/car/select", map[string]string{}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing carId status = %d, want 400", resp.StatusCode)
	}
}

func TestMethodGuards(t *testing.T) {
	e := newTestEnv(t, "")
	if resp := e.get(t, "/api/v1/car/select"); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET on select = %d, want 405", resp.StatusCode)
	}
	if resp := e.post(t, "/api/v1/state", nil); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("POST on state = %d, want 405", resp.StatusCode)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	e := newTestEnv(t, "")
	var cars struct {
		Cars []domain.Car `json:"cars"`
	}
	decodeBody(t, e.get(t, "/api/v1/cars"), &cars)
	if len(cars.Cars) == 0 {
		t.Fatal("empty car catalog")
	}
	var bgs struct {
		Backgrounds []domain.BackgroundOption `json:"backgrounds"`
	}
	decodeBody(t, e.get(t, "/api/v1/backgrounds"), &bgs)
	if len(bgs.Backgrounds) == 0 {
		t.Fatal("empty background catalog")
	}
}

func TestScreenshotEndpoints(t *testing.T) {
	e := newTestEnv(t, "")
	if resp := e.post(t, "/api/v1/screenshots", map[string]bool{"withBackground": true}); resp.StatusCode != http.StatusAccepted {
		t.Fatalf("capture status = %d, want 202", resp.StatusCode)
	}
	// the engine reports the capture result asynchronously
	e.bridge.OnInfoMessage([]byte(`{"ns":"Configurator","type":"System","action":"TakeScreenshot","status":"OK","data":"https://cdn.example/s1.png"}`))

	var list struct {
		Screenshots []domain.Screenshot `json:"screenshots"`
	}
	decodeBody(t, e.get(t, "/api/v1/screenshots"), &list)
	if len(list.Screenshots) != 1 {
		t.Fatalf("screenshots = %d, want 1", len(list.Screenshots))
	}
	id := list.Screenshots[0].ID

	if resp := e.get(t, "/api/v1/screenshots/"+id); resp.StatusCode != http.StatusOK {
		t.Fatalf("get by id = %d", resp.StatusCode)
	}
	req, _ := http.NewRequest(http.MethodDelete, e.srv.URL+"/api/v1/screenshots/"+id, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}
	if resp := e.get(t, "/api/v1/screenshots/" + id); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete = %d, want 404", resp.StatusCode)
	}
}

func TestSequenceAndRenderEndpoints(t *testing.T) {
	e := newTestEnv(t, "")
	e.bridge.OnInfoMessage([]byte(`{"ns":"Configurator","type":"Sequence","action":"GetSequences","status":"OK",` +
		`"data":"[{\"sequenceId\":\"orbit\",\"name\":\"Orbit\",\"category\":\"Exterior\",\"duration\":12}]"}`))

	resp := e.post(t, "/api/v1/sequences/toggle", map[string]string{"sequenceId": "orbit"})
	var q struct {
		Queue []string `json:"queue"`
	}
	decodeBody(t, resp, &q)
	if len(q.Queue) != 1 || q.Queue[0] != "orbit" {
		t.Fatalf("queue = %v", q.Queue)
	}

	if resp := e.get(t, "/api/v1/render"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("render before start = %d, want 404", resp.StatusCode)
	}
	rresp := e.post(t, "/api/v1/render", nil)
	if rresp.StatusCode != http.StatusAccepted {
		t.Fatalf("render start = %d, want 202", rresp.StatusCode)
	}
	var job domain.RenderJob
	decodeBody(t, rresp, &job)
	if job.Status != domain.RenderRendering {
		t.Fatalf("job = %+v", job)
	}
	if resp := e.post(t, "/api/v1/render/cancel", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel = %d, want 200", resp.StatusCode)
	}
	// cancelling twice has nothing left to cancel
	if resp := e.post(t, "/api/v1/render/cancel", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second cancel = %d, want 404", resp.StatusCode)
	}
}

func TestPlayEmptyQueueMapsTo400(t *testing.T) {
	e := newTestEnv(t, "")
	resp := e.post(t, "/api/v1/sequences/play", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body apiErrorBody
	decodeBody(t, resp, &body)
	if body.Error.Code != "empty_queue" {
		t.Fatalf("code = %q", body.Error.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t, "")
	req, _ := http.NewRequest(http.MethodOptions, e.srv.URL+"/api/v1/state", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin = %q", got)
	}
}

func TestStudioMaskEndpoint(t *testing.T) {
	gen := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/mask") {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"mask": "bWFzaw=="})
	}))
	defer gen.Close()

	e := newTestEnv(t, gen.URL)
	resp := e.post(t, "/api/v1/studio/mask", map[string]string{"image": "aW1n"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		Mask string `json:"mask"`
	}
	decodeBody(t, resp, &out)
	if out.Mask != "bWFzaw==" {
		t.Fatalf("mask = %q", out.Mask)
	}
}

func TestStudioSurvivesServerWriteTimeout(t *testing.T) {
	gen := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(400 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]string{"mask": "bWFzaw=="})
	}))
	defer gen.Close()

	// a write timeout shorter than the generation call; the handler must
	// lift the connection deadline or the response is never delivered
	e := newTestEnvWith(t, gen.URL, func(srv *http.Server) {
		srv.WriteTimeout = 150 * time.Millisecond
	})
	resp := e.post(t, "/api/v1/studio/mask", map[string]string{"image": "aW1n"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out struct {
		Mask string `json:"mask"`
	}
	decodeBody(t, resp, &out)
	if out.Mask != "bWFzaw==" {
		t.Fatalf("mask = %q", out.Mask)
	}
}

func TestStudioErrorTaxonomyMapping(t *testing.T) {
	gen := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "content blocked", http.StatusUnprocessableEntity)
	}))
	defer gen.Close()

	e := newTestEnv(t, gen.URL)
	resp := e.post(t, "/api/v1/studio/compose", map[string]string{"image": "aW1n", "prompt": "desert at dusk"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	var body apiErrorBody
	decodeBody(t, resp, &body)
	if body.Error.Code != string(genmedia.CategorySafety) {
		t.Fatalf("code = %q, want safety", body.Error.Code)
	}

	// missing image is caught before any upstream call
	if resp := e.post(t, "/api/v1/studio/video", map[string]string{"prompt": "orbit"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("validation status = %d, want 400", resp.StatusCode)
	}
}
