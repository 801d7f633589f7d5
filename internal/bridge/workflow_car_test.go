package bridge

import (
	"errors"
	"testing"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
)

func TestSelectCarSendsLoad(t *testing.T) {
	b, ft := newTestBridge(t, testConfig())
	if err := b.SelectCar("vf8"); err != nil {
		t.Fatalf("SelectCar: %v", err)
	}
	cmd, ok := ft.find(domain.TypeCar, domain.ActionLoadByID)
	if !ok {
		t.Fatal("no LoadById command sent")
	}
	if cmd.CarID != "vf8" {
		t.Fatalf("carId = %q, want vf8", cmd.CarID)
	}
	if got := b.State().CarLoad; got != domain.CarLoading {
		t.Fatalf("carLoad = %q, want Loading", got)
	}
}

func TestSelectCarUnknownID(t *testing.T) {
	b, _ := newTestBridge(t, testConfig())
	err := b.SelectCar("no-such-car")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCarLoadConfirmThenStreamHandoff(t *testing.T) {
	cfg := testConfig()
	cfg.StreamEndpointURL = "https://stream.example/live"
	b, ft := newTestBridge(t, cfg)
	if err := b.SelectCar("vf8"); err != nil {
		t.Fatalf("SelectCar: %v", err)
	}
	b.OnInfoMessage([]byte(`{"ns":"Configurator","type":"Car","action":"LoadById","status":"OK","carId":"vf8"}`))
	if got := b.State().CarLoad; got != domain.CarLoaded {
		t.Fatalf("carLoad = %q, want Loaded", got)
	}
	// the streaming endpoint is handed over only after the settle delay
	waitFor(t, func() bool {
		_, ok := ft.find(domain.TypeSystem, domain.ActionSetCloudflareURL)
		return ok
	}, "SetCloudflareURL after load")
	cmd, _ := ft.find(domain.TypeSystem, domain.ActionSetCloudflareURL)
	if cmd.URL != "https://stream.example/live" {
		t.Fatalf("url = %q", cmd.URL)
	}
}

func TestStaleCarLoadConfirmIgnored(t *testing.T) {
	b, _ := newTestBridge(t, testConfig())
	if err := b.SelectCar("vf8"); err != nil {
		t.Fatalf("SelectCar: %v", err)
	}
	b.OnInfoMessage([]byte(`{"ns":"Configurator","type":"Car","action":"LoadById","status":"OK","carId":"vf9"}`))
	if got := b.State().CarLoad; got != domain.CarLoading {
		t.Fatalf("carLoad = %q, want Loading after stale confirm", got)
	}
}

func TestCarChangeResetsSelections(t *testing.T) {
	b, ft := newTestBridge(t, testConfig())
	if err := b.SelectCar("vf8"); err != nil {
		t.Fatalf("SelectCar: %v", err)
	}
	b.OnInfoMessage([]byte(`{"ns":"Configurator","type":"Car","action":"LoadById","status":"OK","carId":"vf8"}`))
	b.SetColor("#aa0000")
	b.SetWheel("sport-20")
	if st := b.State(); st.ColorHex != "#aa0000" || st.WheelID != "sport-20" {
		t.Fatalf("selections not applied: %+v", st)
	}

	ft.reset()
	if err := b.SelectCar("vf9"); err != nil {
		t.Fatalf("SelectCar: %v", err)
	}
	st := b.State()
	if st.CarID != "vf9" {
		t.Fatalf("carId = %q", st.CarID)
	}
	if st.CarLoad != domain.CarLoading {
		t.Fatalf("carLoad = %q, want Loading", st.CarLoad)
	}
	if st.ColorHex != "" || st.WheelID != "" {
		t.Fatalf("selections must reset on car change: %+v", st)
	}
	if cmd, ok := ft.find(domain.TypeCar, domain.ActionLoadByID); !ok || cmd.CarID != "vf9" {
		t.Fatalf("expected fresh load for vf9, got %+v ok=%v", cmd, ok)
	}
}

func TestCarLoadFailureRetriedByPoll(t *testing.T) {
	b, ft := newTestBridge(t, testConfig())
	if err := b.SelectCar("vf8"); err != nil {
		t.Fatalf("SelectCar: %v", err)
	}
	b.OnInfoMessage([]byte(`{"ns":"Configurator","type":"Car","action":"LoadById","status":"Error","carId":"vf8"}`))
	if got := b.State().CarLoad; got != domain.CarNotLoaded {
		t.Fatalf("carLoad = %q, want NotLoaded after failure", got)
	}
	ft.reset()
	b.pollReady()
	if _, ok := ft.find(domain.TypeCar, domain.ActionLoadByID); !ok {
		t.Fatal("readiness poll should reissue the load")
	}
}

func TestSelectionCommandsCarryCarID(t *testing.T) {
	b, ft := newTestBridge(t, testConfig())
	if err := b.SelectCar("vf8"); err != nil {
		t.Fatalf("SelectCar: %v", err)
	}
	b.SetColor("#112233")
	b.SetWheel("aero-19")
	color, ok := ft.find(domain.TypeCar, domain.ActionSetColor)
	if !ok || color.Hex != "#112233" || color.CarID != "vf8" {
		t.Fatalf("SetColor command = %+v ok=%v", color, ok)
	}
	wheel, ok := ft.find(domain.TypeCar, domain.ActionSetWheel)
	if !ok || wheel.WheelID != "aero-19" || wheel.CarID != "vf8" {
		t.Fatalf("SetWheel command = %+v ok=%v", wheel, ok)
	}
}
