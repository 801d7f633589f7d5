package httpapi

import (
	"errors"
	"net/http"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/bridge"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
)

// writeBridgeError maps bridge sentinels onto the API error contract.
// ErrNotReady is a conflict, not a server fault: the engine session simply
// is not there yet and the client should retry after reconnect.
func writeBridgeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bridge.ErrNotReady):
		writeError(w, http.StatusConflict, "engine_not_ready", "engine session is not ready", nil)
	case errors.Is(err, bridge.ErrEmptyQueue):
		writeError(w, http.StatusBadRequest, "empty_queue", "selection queue is empty", nil)
	case errors.Is(err, bridge.ErrNoActiveRender):
		writeError(w, http.StatusNotFound, "no_active_render", "no render in progress", nil)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error(), nil)
	}
}

func (d *Deps) handleState(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, d.Bridge.State())
}

func (d *Deps) handleMode(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Mode string `json:"mode"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Mode != bridge.ModePhoto && req.Mode != bridge.ModeVideo {
		writeError(w, http.StatusBadRequest, "bad_mode", "mode must be photo or video", nil)
		return
	}
	d.Bridge.SetMode(req.Mode)
	writeJSON(w, http.StatusOK, map[string]string{"mode": req.Mode})
}

func (d *Deps) handleListCars(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	cars, err := d.Studio.ListCars(r.Context())
	if err != nil {
		writeBridgeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cars": cars})
}

func (d *Deps) handleListBackgrounds(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	bgs, err := d.Studio.ListBackgrounds(r.Context())
	if err != nil {
		writeBridgeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"backgrounds": bgs})
}

func (d *Deps) handleSelectCar(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		CarID string `json:"carId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CarID == "" {
		writeError(w, http.StatusBadRequest, "missing_field", "carId is required", nil)
		return
	}
	if err := d.Bridge.SelectCar(req.CarID); err != nil {
		writeBridgeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, d.Bridge.State())
}

func (d *Deps) handleSetColor(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Hex string `json:"hex"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Hex == "" {
		writeError(w, http.StatusBadRequest, "missing_field", "hex is required", nil)
		return
	}
	d.Bridge.SetColor(req.Hex)
	writeJSON(w, http.StatusAccepted, d.Bridge.State())
}

func (d *Deps) handleSetWheel(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		WheelID string `json:"wheelId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.WheelID == "" {
		writeError(w, http.StatusBadRequest, "missing_field", "wheelId is required", nil)
		return
	}
	d.Bridge.SetWheel(req.WheelID)
	writeJSON(w, http.StatusAccepted, d.Bridge.State())
}

func (d *Deps) handleBackground(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		BackgroundID string `json:"backgroundId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.BackgroundID == "" {
		writeError(w, http.StatusBadRequest, "missing_field", "backgroundId is required", nil)
		return
	}
	if err := d.Bridge.ChangeBackground(req.BackgroundID); err != nil {
		writeBridgeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, d.Bridge.State())
}

func (d *Deps) handleDayNight(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		IsDay *bool `json:"isDay"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsDay == nil {
		writeError(w, http.StatusBadRequest, "missing_field", "isDay is required", nil)
		return
	}
	d.Bridge.ChangeDayNight(*req.IsDay)
	writeJSON(w, http.StatusAccepted, d.Bridge.State())
}

func (d *Deps) handleScreenshots(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		shots, err := d.Studio.ListScreenshots(r.Context())
		if err != nil {
			writeBridgeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"screenshots": shots})
	case http.MethodPost:
		var req struct {
			WithBackground *bool `json:"withBackground"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		withBG := req.WithBackground == nil || *req.WithBackground
		if !d.Bridge.CaptureScreenshot(withBG) {
			writeBridgeError(w, bridge.ErrNotReady)
			return
		}
		// The capture is asynchronous; the shot appears in the list once
		// the engine reports back with the upload URL.
		w.WriteHeader(http.StatusAccepted)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET or POST required", nil)
	}
}

func (d *Deps) handleScreenshotByID(w http.ResponseWriter, r *http.Request) {
	id := trimIDPath(r.URL.Path, "/api/v1/screenshots/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_field", "screenshot id is required", nil)
		return
	}
	switch r.Method {
	case http.MethodGet:
		shot, ok, err := d.Studio.GetScreenshot(r.Context(), id)
		if err != nil {
			writeBridgeError(w, err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "not_found", "screenshot not found", nil)
			return
		}
		writeJSON(w, http.StatusOK, shot)
	case http.MethodDelete:
		if err := d.Studio.DeleteScreenshot(r.Context(), id); err != nil {
			writeBridgeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET or DELETE required", nil)
	}
}

func (d *Deps) handleListSequences(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	st := d.Bridge.State()
	writeJSON(w, http.StatusOK, map[string]any{"sequences": st.Sequences, "queue": st.Queue})
}

func (d *Deps) handleRefreshSequences(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if !d.Bridge.RefreshSequences() {
		writeBridgeError(w, bridge.ErrNotReady)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (d *Deps) handleToggleSequence(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		SequenceID string `json:"sequenceId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SequenceID == "" {
		writeError(w, http.StatusBadRequest, "missing_field", "sequenceId is required", nil)
		return
	}
	d.Bridge.ToggleSequence(req.SequenceID)
	writeJSON(w, http.StatusOK, map[string]any{"queue": d.Bridge.State().Queue})
}

func (d *Deps) handleQueueRemove(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Index int `json:"index"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	d.Bridge.RemoveQueued(req.Index)
	writeJSON(w, http.StatusOK, map[string]any{"queue": d.Bridge.State().Queue})
}

func (d *Deps) handleQueueMove(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	d.Bridge.MoveQueued(req.From, req.To)
	writeJSON(w, http.StatusOK, map[string]any{"queue": d.Bridge.State().Queue})
}

func (d *Deps) handlePlay(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := d.Bridge.Play(); err != nil {
		writeBridgeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (d *Deps) handleStop(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := d.Bridge.Stop(); err != nil {
		writeBridgeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (d *Deps) handleRender(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		st := d.Bridge.State()
		if st.Render == nil {
			writeError(w, http.StatusNotFound, "no_active_render", "no render job", nil)
			return
		}
		writeJSON(w, http.StatusOK, st.Render)
	case http.MethodPost:
		if err := d.Bridge.StartRender(); err != nil {
			writeBridgeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, d.Bridge.State().Render)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET or POST required", nil)
	}
}

func (d *Deps) handleRenderCancel(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := d.Bridge.CancelRender(); err != nil {
		writeBridgeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d.Bridge.State().Render)
}
