package transport

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sprava/spravaterm/internal/bus"
	"go.uber.org/zap"
)

// fakeConn is a scripted websocket connection. Inbound frames arrive on in;
// read errors (remote closes) on errc.
type fakeConn struct {
	in   chan []byte
	errc chan error

	mu     sync.Mutex
	writes []map[string]any
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:   make(chan []byte, 16),
		errc: make(chan error, 1),
	}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case d := <-c.in:
		return d, nil
	case err := <-c.errc:
		return nil, err
	}
}

func (c *fakeConn) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var m map[string]any
	_ = json.Unmarshal(data, &m)
	c.mu.Lock()
	c.writes = append(c.writes, m)
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		select {
		case c.errc <- errors.New("use of closed connection"):
		default:
		}
	}
	return nil
}

func (c *fakeConn) sentTypes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var types []string
	for _, w := range c.writes {
		if tp, ok := w["type"].(string); ok {
			types = append(types, tp)
		}
	}
	return types
}

func testTransport(t *testing.T) *Transport {
	t.Helper()
	tr := New("ws://test", nil, zap.NewNop())
	tr.sleep = func(context.Context, time.Duration) error { return nil }
	return tr
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 400 * time.Millisecond},
		{2, 800 * time.Millisecond},
		{3, 1200 * time.Millisecond},
		{19, 7600 * time.Millisecond},
		{20, 8 * time.Second},
		{100, 8 * time.Second},
	}
	for _, tt := range tests {
		if got := BackoffDelay(tt.attempt); got != tt.want {
			t.Errorf("BackoffDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestConnectWithoutCredential(t *testing.T) {
	tr := testTransport(t)
	tr.dial = func(context.Context, string) (Conn, error) {
		t.Fatal("dial must not be called without a credential")
		return nil, nil
	}

	if err := tr.Connect(context.Background()); !errors.Is(err, ErrNoCredential) {
		t.Errorf("Connect() = %v, want ErrNoCredential", err)
	}
	if tr.State() != Idle {
		t.Errorf("state = %s, want IDLE", tr.State())
	}
}

func TestConnectOpensAndQueriesPresence(t *testing.T) {
	tr := testTransport(t)
	conn := newFakeConn()
	var gotURL string
	tr.dial = func(_ context.Context, rawURL string) (Conn, error) {
		gotURL = rawURL
		return conn, nil
	}

	tr.SetCredential("tok-abc")
	if err := tr.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !tr.IsOpen() {
		t.Error("IsOpen() = false after successful connect")
	}
	if tr.RetryCount() != 0 {
		t.Errorf("retryCount = %d, want 0 after open", tr.RetryCount())
	}
	if gotURL != "ws://test/ws/tok-abc" {
		t.Errorf("dial URL = %q", gotURL)
	}

	types := conn.sentTypes()
	if len(types) != 1 || types[0] != "get_online_friends" {
		t.Errorf("control messages after open = %v, want [get_online_friends]", types)
	}
}

func TestRetryBackoffSequence(t *testing.T) {
	tr := testTransport(t)

	var delays []time.Duration
	tr.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	attempts := 0
	tr.dial = func(context.Context, string) (Conn, error) {
		attempts++
		if attempts <= 3 {
			return nil, errors.New("connection refused")
		}
		return newFakeConn(), nil
	}

	tr.SetCredential("tok")
	if err := tr.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []time.Duration{400 * time.Millisecond, 800 * time.Millisecond, 1200 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("observed delays %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4", attempts)
	}
	if tr.RetryCount() != 0 {
		t.Errorf("retryCount = %d, want 0 after open", tr.RetryCount())
	}
}

func TestDisconnectCancelsPendingRetry(t *testing.T) {
	tr := testTransport(t)

	sleeping := make(chan struct{}, 1)
	tr.sleep = func(ctx context.Context, _ time.Duration) error {
		select {
		case sleeping <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return ctx.Err()
	}

	var mu sync.Mutex
	attempts := 0
	tr.dial = func(context.Context, string) (Conn, error) {
		mu.Lock()
		attempts++
		mu.Unlock()
		return nil, errors.New("connection refused")
	}

	tr.SetCredential("tok")
	done := make(chan error, 1)
	go func() { done <- tr.Connect(context.Background()) }()

	<-sleeping
	tr.Disconnect()

	select {
	case err := <-done:
		if !errors.Is(err, ErrDisconnected) {
			t.Errorf("Connect() = %v, want ErrDisconnected", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Connect did not return after Disconnect")
	}

	// The pending backoff timer must not fire another attempt.
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	if attempts != 1 {
		t.Errorf("attempts after Disconnect = %d, want 1", attempts)
	}
	mu.Unlock()
	if tr.State() != Closed {
		t.Errorf("state = %s, want CLOSED", tr.State())
	}
}

func TestCredentialRejectionIsTerminal(t *testing.T) {
	tr := testTransport(t)
	conn := newFakeConn()
	dials := 0
	tr.dial = func(context.Context, string) (Conn, error) {
		dials++
		return conn, nil
	}

	tr.SetCredential("tok")
	if err := tr.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	conn.errc <- &websocket.CloseError{Code: CloseCredentialRejected}
	eventually(t, func() bool { return tr.State() == Closed }, "state never became CLOSED")

	if tr.IsOpen() {
		t.Error("IsOpen() = true after credential rejection")
	}

	// Reconnecting with the same credential is refused outright.
	if err := tr.Connect(context.Background()); !errors.Is(err, ErrCredentialRejected) {
		t.Errorf("Connect() = %v, want ErrCredentialRejected", err)
	}
	time.Sleep(50 * time.Millisecond)
	if dials != 1 {
		t.Errorf("dials = %d, want 1 (no reconnect after rejection)", dials)
	}

	// A fresh credential clears the latch.
	tr.SetCredential("tok-2")
	if err := tr.Connect(context.Background()); err != nil {
		t.Errorf("Connect() with new credential = %v", err)
	}
}

func TestCredentialRejectionAnnouncedOnBus(t *testing.T) {
	b := bus.New()
	tr := New("ws://test", b, zap.NewNop())
	tr.sleep = func(context.Context, time.Duration) error { return nil }
	conn := newFakeConn()
	tr.dial = func(context.Context, string) (Conn, error) { return conn, nil }

	ch, unsub := b.Subscribe("transport.", 16)
	defer unsub()

	tr.SetCredential("tok")
	if err := tr.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	conn.errc <- &websocket.CloseError{Code: CloseCredentialRejected}

	// A rejection must be distinguishable from an ordinary close: CLOSED
	// alone also follows Disconnect, so the dedicated event has to appear.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Kind == bus.KindTransportRejected {
				return
			}
		case <-deadline:
			t.Fatal("no transport.credential_rejected event after 4008 close")
		}
	}
}

func TestRemoteCloseTriggersReconnect(t *testing.T) {
	tr := testTransport(t)

	var mu sync.Mutex
	var conns []*fakeConn
	tr.dial = func(context.Context, string) (Conn, error) {
		c := newFakeConn()
		mu.Lock()
		conns = append(conns, c)
		mu.Unlock()
		return c, nil
	}

	tr.SetCredential("tok")
	if err := tr.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	first := conns[0]
	mu.Unlock()
	first.errc <- &websocket.CloseError{Code: websocket.CloseAbnormalClosure}

	eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(conns) == 2
	}, "transport never reconnected after remote close")
	eventually(t, func() bool { return tr.IsOpen() }, "transport never reopened")
}

func TestSingleFlightConnect(t *testing.T) {
	tr := testTransport(t)

	release := make(chan struct{})
	var mu sync.Mutex
	dials := 0
	tr.dial = func(context.Context, string) (Conn, error) {
		mu.Lock()
		dials++
		mu.Unlock()
		<-release
		return newFakeConn(), nil
	}

	tr.SetCredential("tok")
	results := make(chan error, 2)
	go func() { results <- tr.Connect(context.Background()) }()
	eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return dials == 1
	}, "first dial never started")
	go func() { results <- tr.Connect(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		select {
		case err := <-results:
			if err != nil {
				t.Errorf("Connect() = %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Connect did not return")
		}
	}
	mu.Lock()
	if dials != 1 {
		t.Errorf("dials = %d, want 1 (single-flight)", dials)
	}
	mu.Unlock()
}

func TestListenersRunInRegistrationOrder(t *testing.T) {
	tr := testTransport(t)
	conn := newFakeConn()
	tr.dial = func(context.Context, string) (Conn, error) { return conn, nil }

	var mu sync.Mutex
	var order []string
	tr.Subscribe(func(Event) {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
	})
	unsub := tr.Subscribe(func(Event) {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
	})

	tr.SetCredential("tok")
	if err := tr.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	conn.in <- []byte(`{"type":"conversation_deleted","conversation_id":5}`)
	eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	}, "listeners not invoked")

	mu.Lock()
	if order[0] != "first" || order[1] != "second" {
		t.Errorf("order = %v", order)
	}
	mu.Unlock()

	// After unsubscribe only the first listener fires.
	unsub()
	conn.in <- []byte(`{"type":"conversation_deleted","conversation_id":6}`)
	eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	}, "remaining listener not invoked")
}

func TestMalformedPayloadsDropped(t *testing.T) {
	tr := testTransport(t)
	conn := newFakeConn()
	tr.dial = func(context.Context, string) (Conn, error) { return conn, nil }

	var mu sync.Mutex
	var got []Event
	tr.Subscribe(func(evt Event) {
		mu.Lock()
		got = append(got, evt)
		mu.Unlock()
	})

	tr.SetCredential("tok")
	if err := tr.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	conn.in <- []byte(`not json at all`)
	conn.in <- []byte(`{"type":"some_future_event","x":1}`)
	conn.in <- []byte(`{"type":"delete_message","message_id":9}`)

	eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, "valid event after garbage never delivered")

	mu.Lock()
	if _, ok := got[0].(MessageDeleted); !ok {
		t.Errorf("delivered event = %T, want MessageDeleted", got[0])
	}
	mu.Unlock()
}

func TestSendWhenNotOpen(t *testing.T) {
	tr := testTransport(t)
	if tr.Send(map[string]string{"type": "typing"}) {
		t.Error("Send() = true on a transport that never connected")
	}
}

func TestDisconnectClosesSocket(t *testing.T) {
	tr := testTransport(t)
	conn := newFakeConn()
	tr.dial = func(context.Context, string) (Conn, error) { return conn, nil }

	tr.SetCredential("tok")
	if err := tr.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	tr.Disconnect()

	conn.mu.Lock()
	closed := conn.closed
	conn.mu.Unlock()
	if !closed {
		t.Error("socket not closed by Disconnect")
	}
	if tr.IsOpen() {
		t.Error("IsOpen() = true after Disconnect")
	}
	if tr.RetryCount() != 0 {
		t.Errorf("retryCount = %d, want 0", tr.RetryCount())
	}
}
