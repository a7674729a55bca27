package transport

import (
	"context"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// CloseCredentialRejected is the distinguished close code the service sends
// when the connection credential is invalid. It is terminal: the client must
// not reconnect until a new credential is set.
const CloseCredentialRejected = 4008

// Conn is the minimal websocket surface the transport needs. Production uses
// a gorilla/websocket connection; tests substitute a scripted fake.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteJSON(v any) error
	Close() error
}

// DialFunc opens a websocket connection to the given URL.
type DialFunc func(ctx context.Context, rawURL string) (Conn, error)

type gorillaConn struct {
	ws *websocket.Conn
}

func (c *gorillaConn) ReadMessage() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	return data, err
}

func (c *gorillaConn) WriteJSON(v any) error {
	return c.ws.WriteJSON(v)
}

func (c *gorillaConn) Close() error {
	return c.ws.Close()
}

func gorillaDial(ctx context.Context, rawURL string) (Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: connectTimeout}
	ws, resp, err := dialer.DialContext(ctx, rawURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &gorillaConn{ws: ws}, nil
}

// connectURL embeds the credential in the connection path, the addressing
// scheme the push endpoint uses.
func connectURL(base, token string) string {
	return base + "/ws/" + url.PathEscape(token)
}

const connectTimeout = 5 * time.Second
