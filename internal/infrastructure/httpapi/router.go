package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/bridge"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/genmedia"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/infrastructure/config"
	obs "github.com/house-360-vn/virtual-studio-web-remove-background/internal/infrastructure/observability"
	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/usecase"
)

type Deps struct {
	Cfg     config.Config
	Logger  *zerolog.Logger
	Metrics *obs.Metrics
	Studio  *usecase.StudioService
	Bridge  *bridge.Bridge
	Gen     *genmedia.Client
	Monitor *MonitorHub
}

func NewRouter(d *Deps) http.Handler {
	return withCORS(d.Cfg, buildBaseMux(d))
}

func buildBaseMux(d *Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !d.Bridge.Registry().IsReady() {
			writeError(w, http.StatusServiceUnavailable, "engine_not_ready", "engine session is not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry(), promhttp.HandlerOpts{}))

	mux.HandleFunc("/api/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":    "virtual-studio",
			"version": obs.Version,
			"commit":  obs.Commit,
			"time":    time.Now().UTC(),
		})
	})

	// Configurator surface.
	mux.HandleFunc("/api/v1/state", d.handleState)
	mux.HandleFunc("/api/v1/mode", d.handleMode)
	mux.HandleFunc("/api/v1/cars", d.handleListCars)
	mux.HandleFunc("/api/v1/backgrounds", d.handleListBackgrounds)
	mux.HandleFunc("/api/v1/car/select", d.handleSelectCar)
	mux.HandleFunc("/api/v1/car/color", d.handleSetColor)
	mux.HandleFunc("/api/v1/car/wheel", d.handleSetWheel)
	mux.HandleFunc("/api/v1/environment/background", d.handleBackground)
	mux.HandleFunc("/api/v1/environment/daynight", d.handleDayNight)

	mux.HandleFunc("/api/v1/screenshots", d.handleScreenshots)
	mux.HandleFunc("/api/v1/screenshots/", d.handleScreenshotByID)

	// Sequence playback. /api/v1/sequences lists the discovered set;
	// everything below it mutates the queue or playback.
	mux.HandleFunc("/api/v1/sequences", d.handleListSequences)
	mux.HandleFunc("/api/v1/sequences/refresh", d.handleRefreshSequences)
	mux.HandleFunc("/api/v1/sequences/toggle", d.handleToggleSequence)
	mux.HandleFunc("/api/v1/sequences/queue/remove", d.handleQueueRemove)
	mux.HandleFunc("/api/v1/sequences/queue/move", d.handleQueueMove)
	mux.HandleFunc("/api/v1/sequences/play", d.handlePlay)
	mux.HandleFunc("/api/v1/sequences/stop", d.handleStop)

	mux.HandleFunc("/api/v1/render", d.handleRender)
	mux.HandleFunc("/api/v1/render/cancel", d.handleRenderCancel)

	mux.HandleFunc("/api/v1/monitor/ws", d.Monitor.HandleWS)

	// AI studio surface.
	mux.HandleFunc("/api/v1/studio/mask", d.handleStudioMask)
	mux.HandleFunc("/api/v1/studio/compose", d.handleStudioCompose)
	mux.HandleFunc("/api/v1/studio/video", d.handleStudioVideo)

	return mux
}

func withCORS(cfg config.Config, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Sec-WebSocket-Protocol")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", method+" required", nil)
		return false
	}
	return true
}

func trimIDPath(path, prefix string) string {
	return strings.Trim(strings.TrimPrefix(path, prefix), "/")
}
