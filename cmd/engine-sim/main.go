// engine-sim is a stand-in for the remote rendering engine. It speaks the
// Configurator command protocol over a websocket, acknowledges every known
// action, and fakes the long-running flows: sequence playback finishes
// after a short delay and render jobs tick progress to completion.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
	obs "github.com/house-360-vn/virtual-studio-web-remove-background/internal/infrastructure/observability"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type simConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *simConn) send(v map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.WriteJSON(v)
}

func main() {
	addr := flag.String("addr", ":9081", "listen address")
	renderTicks := flag.Int("render-ticks", 5, "progress updates per render")
	flag.Parse()

	logger := obs.NewLogger("debug")

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error().Err(err).Msg("upgrade failed")
			return
		}
		logger.Info().Str("remote", r.RemoteAddr).Msg("engine client connected")
		sc := &simConn{conn: conn}
		for {
			var cmd domain.Command
			if err := conn.ReadJSON(&cmd); err != nil {
				logger.Info().Err(err).Msg("engine client gone")
				_ = conn.Close()
				return
			}
			logger.Debug().Str("type", cmd.Type).Str("action", cmd.Action).Msg("command")
			handle(sc, cmd, *renderTicks)
		}
	})

	logger.Info().Str("addr", *addr).Msg("engine-sim listening")
	if err := http.ListenAndServe(*addr, nil); err != nil {
		logger.Fatal().Err(err).Msg("listen failed")
	}
}

func ack(cmd domain.Command, extra map[string]any) map[string]any {
	m := map[string]any{
		"ns":     cmd.NS,
		"type":   cmd.Type,
		"action": cmd.Action,
		"status": "OK",
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func handle(sc *simConn, cmd domain.Command, renderTicks int) {
	switch cmd.Type {
	case domain.TypeCar:
		switch cmd.Action {
		case domain.ActionLoadByID:
			// settle delay before confirming the load
			go func() {
				time.Sleep(200 * time.Millisecond)
				sc.send(ack(cmd, map[string]any{"carId": cmd.CarID}))
			}()
		default:
			sc.send(ack(cmd, nil))
		}
	case domain.TypeEnvironment:
		extra := map[string]any{}
		if cmd.IsDay != nil {
			extra["isDay"] = *cmd.IsDay
		}
		sc.send(ack(cmd, extra))
	case domain.TypeSystem:
		switch cmd.Action {
		case domain.ActionTakeScreenshot, domain.ActionTakeScreenshotNoBackground:
			url := fmt.Sprintf("https://cdn.example/shots/%d.png", time.Now().UnixMilli())
			// payload is a bare string, matching the real engine
			sc.send(ack(cmd, map[string]any{"data": url}))
		default:
			sc.send(ack(cmd, nil))
		}
	case domain.TypeSequence:
		handleSequence(sc, cmd)
	case domain.TypeRender:
		handleRender(sc, cmd, renderTicks)
	}
}

func handleSequence(sc *simConn, cmd domain.Command) {
	switch cmd.Action {
	case domain.ActionGetSequences:
		// string-encoded payload with engine-casing field names, the way
		// the real engine reports its sequence catalog
		list := `[{"SequenceId":"orbit","DisplayName":"Orbit","category":"Exterior","duration":12},` +
			`{"SequenceId":"interior-pan","DisplayName":"Interior Pan","category":"Interior","duration":8}]`
		sc.send(ack(cmd, map[string]any{"data": list}))
	case domain.ActionPlaySequence:
		sc.send(ack(cmd, nil))
		go func() {
			time.Sleep(2 * time.Second)
			sc.send(map[string]any{
				"ns":     cmd.NS,
				"type":   domain.TypeSequence,
				"action": domain.ActionSequenceFinished,
				"status": "OK",
			})
		}()
	case domain.ActionStopSequence:
		sc.send(ack(cmd, nil))
	}
}

func handleRender(sc *simConn, cmd domain.Command, ticks int) {
	switch cmd.Action {
	case domain.ActionStartRender:
		jobID := fmt.Sprintf("job-%d", time.Now().UnixMilli())
		sc.send(map[string]any{
			"ns": cmd.NS, "type": domain.TypeRender, "action": domain.ActionRenderStarted,
			"status": "OK", "data": map[string]any{"jobId": jobID},
		})
		go func() {
			for i := 1; i <= ticks; i++ {
				time.Sleep(500 * time.Millisecond)
				sc.send(map[string]any{
					"ns": cmd.NS, "type": domain.TypeRender, "action": domain.ActionRenderProgress,
					"status": "OK", "data": map[string]any{"jobId": jobID, "progress": i * 100 / ticks},
				})
			}
			sc.send(map[string]any{
				"ns": cmd.NS, "type": domain.TypeRender, "action": domain.ActionRenderComplete,
				"status": "OK", "data": map[string]any{"jobId": jobID, "downloadUrl": "https://cdn.example/renders/" + jobID + ".mp4"},
			})
		}()
	case domain.ActionCancelRender:
		var ref struct {
			JobID string `json:"jobId"`
		}
		if s, ok := cmd.Data.(string); ok {
			_ = json.Unmarshal([]byte(s), &ref)
		}
		sc.send(map[string]any{
			"ns": cmd.NS, "type": domain.TypeRender, "action": domain.ActionRenderCancelled,
			"status": "OK", "data": map[string]any{"jobId": ref.JobID},
		})
	}
}
