package jsonrpc

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// WebsocketTransportConfig configures WebsocketTransport.
type WebsocketTransportConfig struct {
	// HandshakeTimeout bounds the opening handshake.
	HandshakeTimeout time.Duration
	// ReadTimeout bounds the wait for the reply frame.
	ReadTimeout time.Duration
}

// DefaultWebsocketTransportConfig is used by NewClient for ws and wss URLs.
var DefaultWebsocketTransportConfig = WebsocketTransportConfig{
	HandshakeTimeout: 5 * time.Second,
	ReadTimeout:      30 * time.Second,
}

var _ Transport = (*WebsocketTransport)(nil)

// WebsocketTransport opens one connection per exchange. The signing headers
// travel on the handshake, the body as a single text frame, and the reply is
// the next frame from the server. Envelope.Method is ignored.
type WebsocketTransport struct {
	cfg WebsocketTransportConfig
}

// NewWebsocketTransport returns a transport that dials with cfg on every
// Send. Zero timeouts wait until ctx is done.
func NewWebsocketTransport(cfg WebsocketTransportConfig) *WebsocketTransport {
	return &WebsocketTransport{cfg: cfg}
}

func (t *WebsocketTransport) Send(ctx context.Context, env Envelope) ([]byte, error) {
	dialer := websocket.Dialer{HandshakeTimeout: t.cfg.HandshakeTimeout}

	conn, _, err := dialer.DialContext(ctx, env.URL, env.Header)
	if err != nil {
		return nil, fmt.Errorf("%w to %s: %w", ErrUnableToConnect, env.URL, err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the caller gives up.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := conn.WriteMessage(websocket.TextMessage, env.Body); err != nil {
		return nil, fmt.Errorf("error writing request to %s: %w", env.URL, err)
	}

	if !env.ExpectReply {
		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))
		return nil, nil
	}

	if t.cfg.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(t.cfg.ReadTimeout)); err != nil {
			return nil, err
		}
	}

	_, output, err := conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("error reading response from %s: %w", env.URL, err)
	}
	return output, nil
}
