package bridge

import (
	"context"
	"strings"
	"testing"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
)

func TestDispatchIgnoresForeignNamespace(t *testing.T) {
	b, _ := newTestBridge(t, testConfig())
	if err := b.SelectCar("vf8"); err != nil {
		t.Fatalf("SelectCar: %v", err)
	}
	b.OnInfoMessage([]byte(`{"ns":"SomethingElse","type":"Car","action":"LoadById","status":"OK","carId":"vf8"}`))
	if got := b.State().CarLoad; got != domain.CarLoading {
		t.Fatalf("carLoad = %q, foreign namespace must be ignored", got)
	}
}

func TestDispatchSurvivesMalformedMessages(t *testing.T) {
	b, _ := newTestBridge(t, testConfig())
	b.OnInfoMessage([]byte(`{"ns":`))
	b.OnInfoMessage([]byte(`[]`))
	b.OnInfoMessage(nil)
	// the bridge must still process well-formed traffic afterwards
	b.OnInfoMessage([]byte(`{"ns":"Configurator","type":"Environment","action":"ChangeDayNight","status":"OK","isDay":false}`))
	if b.State().IsDay {
		t.Fatal("dispatch stopped processing after malformed input")
	}
}

func TestDispatchIgnoresUnknownPairs(t *testing.T) {
	b, _ := newTestBridge(t, testConfig())
	before := b.State()
	b.OnInfoMessage([]byte(`{"ns":"Configurator","type":"Car","action":"Explode","status":"OK"}`))
	b.OnInfoMessage([]byte(`{"ns":"Configurator","type":"Teleport","action":"LoadById","status":"OK"}`))
	after := b.State()
	if before.CarLoad != after.CarLoad || before.IsDay != after.IsDay {
		t.Fatal("unknown (type, action) pairs must be no-ops")
	}
}

func TestScreenshotStoredFromStringPayload(t *testing.T) {
	b, _ := newTestBridge(t, testConfig())
	b.OnInfoMessage([]byte(`{"ns":"Configurator","type":"System","action":"TakeScreenshot","status":"OK","data":"https://cdn.example/shots/1.png"}`))
	shots, err := b.studio.ListScreenshots(context.Background())
	if err != nil {
		t.Fatalf("ListScreenshots: %v", err)
	}
	if len(shots) != 1 {
		t.Fatalf("shots = %d, want 1", len(shots))
	}
	if shots[0].URL != "https://cdn.example/shots/1.png" {
		t.Fatalf("url = %q", shots[0].URL)
	}
	if !strings.HasPrefix(shots[0].ID, "shot-") || strings.HasPrefix(shots[0].ID, "shot-nobg-") {
		t.Fatalf("id = %q, want shot- prefix", shots[0].ID)
	}
}

func TestScreenshotNoBackgroundPrefix(t *testing.T) {
	b, _ := newTestBridge(t, testConfig())
	b.OnInfoMessage([]byte(`{"ns":"Configurator","type":"System","action":"TakeScreenshotNoBackground","status":"OK","data":{"url":"https://cdn.example/shots/2.png"}}`))
	shots, _ := b.studio.ListScreenshots(context.Background())
	if len(shots) != 1 {
		t.Fatalf("shots = %d, want 1", len(shots))
	}
	if !strings.HasPrefix(shots[0].ID, "shot-nobg-") {
		t.Fatalf("id = %q, want shot-nobg- prefix", shots[0].ID)
	}
}

func TestScreenshotUnparseablePayloadDropped(t *testing.T) {
	b, _ := newTestBridge(t, testConfig())
	b.OnInfoMessage([]byte(`{"ns":"Configurator","type":"System","action":"TakeScreenshot","status":"OK","data":{"somethingElse":true}}`))
	shots, _ := b.studio.ListScreenshots(context.Background())
	if len(shots) != 0 {
		t.Fatalf("shots = %d, payload without url must be dropped", len(shots))
	}
}

func TestScreenshotFailureNotStored(t *testing.T) {
	b, _ := newTestBridge(t, testConfig())
	b.OnInfoMessage([]byte(`{"ns":"Configurator","type":"System","action":"TakeScreenshot","status":"Error"}`))
	shots, _ := b.studio.ListScreenshots(context.Background())
	if len(shots) != 0 {
		t.Fatalf("shots = %d, failed capture must not store", len(shots))
	}
}
