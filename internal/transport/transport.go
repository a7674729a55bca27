package transport

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sprava/spravaterm/internal/bus"
	"go.uber.org/zap"
)

var (
	// ErrNoCredential is returned by Connect when no credential is set.
	ErrNoCredential = errors.New("transport: no credential set")
	// ErrCredentialRejected is returned after the service closed the
	// connection with the credential-rejection code. Cleared by SetCredential.
	ErrCredentialRejected = errors.New("transport: credential rejected")
	// ErrDisconnected is returned when Disconnect aborts a pending connect.
	ErrDisconnected = errors.New("transport: disconnected")
)

const (
	backoffStep = 400 * time.Millisecond
	backoffCap  = 8 * time.Second
)

// BackoffDelay returns the wait before retry attempt n (n >= 1):
// min(8s, 400ms * n).
func BackoffDelay(n int) time.Duration {
	d := time.Duration(n) * backoffStep
	if d > backoffCap {
		return backoffCap
	}
	return d
}

// Listener receives every decoded inbound event. Listeners run synchronously
// on the read loop in registration order; a slow listener delays the next
// event, never reorders it.
type Listener func(Event)

type inflight struct {
	done chan struct{}
	err  error
}

// Transport owns the single persistent push connection for the process. It
// reconnects with linear capped backoff while wanted, stops cold on
// credential rejection, and fans decoded events out to subscribers.
type Transport struct {
	baseURL string
	logger  *zap.Logger
	bus     *bus.Bus

	// Injection points for tests; production values set in New.
	dial  DialFunc
	sleep func(ctx context.Context, d time.Duration) error

	mu          sync.Mutex
	token       string
	state       State
	desired     bool // true = Connected wanted
	rejected    bool
	retryCount  int
	conn        Conn
	current     *inflight
	retryCancel context.CancelFunc

	lmu       sync.Mutex
	listeners []listenerEntry
	nextLID   int
}

type listenerEntry struct {
	id int
	fn Listener
}

// New creates a transport for the given websocket base URL.
func New(wsBaseURL string, b *bus.Bus, logger *zap.Logger) *Transport {
	return &Transport{
		baseURL: wsBaseURL,
		logger:  logger,
		bus:     b,
		state:   Idle,
		dial:    gorillaDial,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetCredential replaces the connection credential. An empty token clears
// it. Setting a credential also clears the rejection latch left behind by a
// credential-rejection close.
func (t *Transport) SetCredential(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = token
	if token != "" {
		t.rejected = false
	}
}

// State returns the current connection state.
func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// IsOpen reports whether the connection is currently open.
func (t *Transport) IsOpen() bool {
	return t.State() == Open
}

// RetryCount returns the consecutive failed attempt count. Zero after any
// successful open.
func (t *Transport) RetryCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.retryCount
}

// Subscribe registers a listener for inbound events and returns its cancel
// function. Listeners are invoked in registration order.
func (t *Transport) Subscribe(fn Listener) func() {
	t.lmu.Lock()
	id := t.nextLID
	t.nextLID++
	t.listeners = append(t.listeners, listenerEntry{id: id, fn: fn})
	t.lmu.Unlock()

	return func() {
		t.lmu.Lock()
		defer t.lmu.Unlock()
		for i, e := range t.listeners {
			if e.id == id {
				t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
				return
			}
		}
	}
}

// Connect brings the connection up, retrying failed attempts with backoff
// until open, Disconnect is called, or the credential is rejected. A call
// while another connect is in flight joins that attempt and returns its
// outcome instead of opening a duplicate socket.
func (t *Transport) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.token == "" {
		t.mu.Unlock()
		return ErrNoCredential
	}
	if t.rejected {
		t.mu.Unlock()
		return ErrCredentialRejected
	}
	if t.current != nil {
		fl := t.current
		t.mu.Unlock()
		select {
		case <-fl.done:
			return fl.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	fl := &inflight{done: make(chan struct{})}
	t.current = fl
	t.desired = true
	retryCtx, cancel := context.WithCancel(context.Background())
	t.retryCancel = cancel
	t.mu.Unlock()

	fl.err = t.connectLoop(retryCtx)

	t.mu.Lock()
	t.current = nil
	t.retryCancel = nil
	t.mu.Unlock()
	close(fl.done)
	return fl.err
}

func (t *Transport) connectLoop(ctx context.Context) error {
	for {
		t.mu.Lock()
		if !t.desired {
			t.mu.Unlock()
			return ErrDisconnected
		}
		if t.rejected {
			t.mu.Unlock()
			return ErrCredentialRejected
		}
		token := t.token
		if token == "" {
			t.mu.Unlock()
			return ErrNoCredential
		}
		t.setState(Connecting)
		t.mu.Unlock()

		dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		conn, err := t.dial(dialCtx, connectURL(t.baseURL, token))
		cancel()

		if err == nil {
			t.mu.Lock()
			if !t.desired {
				// Disconnect raced the dial; drop the socket.
				t.mu.Unlock()
				_ = conn.Close()
				return ErrDisconnected
			}
			t.conn = conn
			t.retryCount = 0
			t.setState(Open)
			t.mu.Unlock()

			t.logger.Info("push connection open")
			go t.readLoop(conn)

			// Prime the presence set as soon as the pipe is up.
			t.RequestOnlineFriends()
			return nil
		}

		if ctx.Err() != nil {
			return ErrDisconnected
		}
		if isCredentialRejection(err) {
			t.markRejected()
			return ErrCredentialRejected
		}

		t.mu.Lock()
		t.retryCount++
		n := t.retryCount
		t.mu.Unlock()

		delay := BackoffDelay(n)
		t.logger.Warn("push connection attempt failed",
			zap.Error(err), zap.Int("retry", n), zap.Duration("backoff", delay))

		if err := t.sleep(ctx, delay); err != nil {
			return ErrDisconnected
		}
	}
}

// Disconnect tears the connection down and cancels any scheduled retry.
// After Disconnect no further connection attempts occur until Connect is
// called again.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	t.desired = false
	t.retryCount = 0
	if t.retryCancel != nil {
		t.retryCancel()
	}
	conn := t.conn
	t.conn = nil
	if t.state != Idle {
		t.setState(Closed)
	}
	t.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

// Send writes a payload if the connection is open. Fire and forget: returns
// true iff the write was attempted on an open connection and succeeded.
func (t *Transport) Send(payload any) bool {
	t.mu.Lock()
	conn := t.conn
	open := t.state == Open
	t.mu.Unlock()

	if !open || conn == nil {
		return false
	}
	if err := conn.WriteJSON(payload); err != nil {
		t.logger.Warn("push send failed", zap.Error(err))
		return false
	}
	return true
}

func (t *Transport) readLoop(conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			t.handleReadError(conn, err)
			return
		}

		evt, perr := ParseEvent(data)
		if perr != nil {
			// Malformed or unknown payloads never crash the loop.
			t.logger.Debug("dropping push payload", zap.Error(perr))
			continue
		}
		t.deliver(evt)
	}
}

func (t *Transport) handleReadError(conn Conn, err error) {
	t.mu.Lock()
	if t.conn != conn {
		// A newer connection already replaced this one.
		t.mu.Unlock()
		return
	}
	t.conn = nil

	if isCredentialRejection(err) {
		t.mu.Unlock()
		t.logger.Warn("push credential rejected, reconnects disabled")
		t.markRejected()
		return
	}

	if !t.desired {
		t.setState(Closed)
		t.mu.Unlock()
		return
	}

	t.setState(Connecting)
	t.mu.Unlock()

	t.logger.Warn("push connection lost, reconnecting", zap.Error(err))
	go func() {
		if cerr := t.Connect(context.Background()); cerr != nil {
			t.logger.Warn("reconnect abandoned", zap.Error(cerr))
		}
	}()
}

// markRejected latches the credential-rejection state and announces it on
// the bus as its own event. A plain disconnect and a rejection both end in
// CLOSED, so consumers that must clear the session need the distinct signal.
func (t *Transport) markRejected() {
	t.mu.Lock()
	t.rejected = true
	t.desired = false
	if t.retryCancel != nil {
		t.retryCancel()
	}
	t.setState(Closed)
	if t.bus != nil {
		t.bus.Publish(bus.Event{Kind: bus.KindTransportRejected, Timestamp: time.Now()})
	}
	t.mu.Unlock()
}

func (t *Transport) deliver(evt Event) {
	t.lmu.Lock()
	entries := make([]listenerEntry, len(t.listeners))
	copy(entries, t.listeners)
	t.lmu.Unlock()

	for _, e := range entries {
		e.fn(evt)
	}
}

func isCredentialRejection(err error) bool {
	return websocket.IsCloseError(err, CloseCredentialRejected)
}
