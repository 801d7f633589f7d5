package bridge

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
)

// wsSession is the gorilla/websocket Transport implementation. One write at
// a time (gorilla allows a single writer); the read loop delivers Info
// messages and turns the read error into the disconnect signal. Pongs from
// the engine double as the video-activity heartbeat.
type wsSession struct {
	log  zerolog.Logger
	conn *websocket.Conn

	writeMu  sync.Mutex
	listener TransportListener

	closeOnce sync.Once
	started   bool
}

// DialEngine connects to the engine streaming endpoint and returns the
// session handle. The connected signal fires from Start, after the listener
// is attached, so a handler installed late cannot miss it.
func DialEngine(ctx context.Context, url string, log zerolog.Logger) (Transport, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		NetDialContext:   (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
	}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return nil, err
	}
	return &wsSession{log: log, conn: conn}, nil
}

func (s *wsSession) SetListener(l TransportListener) {
	s.listener = l
	s.conn.SetPongHandler(func(string) error {
		l.OnVideoActivity()
		return nil
	})
}

func (s *wsSession) Start() {
	if s.listener == nil || s.started {
		return
	}
	s.started = true
	s.listener.OnConnected()
	go s.readLoop()
}

func (s *wsSession) Send(cmd domain.Command) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(15 * time.Second))
	if err := s.conn.WriteJSON(cmd); err != nil {
		s.log.Warn().Err(err).Str("type", cmd.Type).Str("action", cmd.Action).Msg("engine: command write failed")
		if s.listener != nil {
			s.listener.OnDataChannelError(err)
		}
		return err
	}
	return nil
}

func (s *wsSession) readLoop() {
	for {
		mt, data, err := s.conn.ReadMessage()
		if err != nil {
			s.listener.OnDisconnected(err)
			_ = s.Close()
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		s.listener.OnInfoMessage(data)
	}
}

func (s *wsSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(2*time.Second))
		err = s.conn.Close()
	})
	return err
}
