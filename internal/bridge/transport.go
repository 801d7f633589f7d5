package bridge

import (
	"context"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
)

// Transport is one live streaming session to the engine. Commands go out on
// the interaction channel; Info-channel messages and connectivity signals
// come back through the listener. SetListener must be called before Start.
type Transport interface {
	Send(cmd domain.Command) error
	SetListener(l TransportListener)
	Start()
	Close() error
}

// TransportListener receives transport-level signals. OnConnected fires only
// on a verified low-level connect, never merely because a session object
// exists.
type TransportListener interface {
	OnConnected()
	OnDisconnected(err error)
	OnDataChannelError(err error)
	OnVideoActivity()
	OnInfoMessage(raw []byte)
}

// Dialer establishes a new Transport. The reconnection supervisor calls it
// for the initial connect and every retry.
type Dialer func(ctx context.Context) (Transport, error)
