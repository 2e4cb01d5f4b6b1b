package connection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockServer creates a test websocket server that runs handler for each
// accepted connection.
func mockServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))

	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

// handshakeThenHold sends the protocol handshake and keeps the
// connection open until the client goes away.
func handshakeThenHold(conn *websocket.Conn) {
	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connected"}`))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func testConfig(url string) Config {
	return Config{
		URL:                  url,
		HandshakeTimeout:     2 * time.Second,
		WriteTimeout:         time.Second,
		AutoReconnect:        false,
		ReconnectBaseDelay:   10 * time.Millisecond,
		ReconnectMaxDelay:    100 * time.Millisecond,
		MaxReconnectAttempts: 3,
	}
}

func TestConnect(t *testing.T) {
	server := mockServer(t, handshakeThenHold)
	defer server.Close()

	c := New(testConfig(wsURL(server)), nil)
	defer c.Close()

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if got := c.Status(); got != StatusConnected {
		t.Errorf("Status = %v, want %v", got, StatusConnected)
	}

	// Already connected: resolves immediately.
	if err := c.Connect(context.Background()); err != nil {
		t.Errorf("second Connect failed: %v", err)
	}
}

func TestConnectRequiresHandshakeFrame(t *testing.T) {
	// Transport opens but the application handshake never completes.
	server := mockServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	cfg := testConfig(wsURL(server))
	cfg.HandshakeTimeout = 100 * time.Millisecond
	c := New(cfg, nil)
	defer c.Close()

	err := c.Connect(context.Background())
	if err == nil {
		t.Fatal("Connect succeeded without handshake frame")
	}
	if got := c.Status(); got == StatusConnected {
		t.Errorf("Status = %v after failed handshake", got)
	}
}

func TestConcurrentConnectSharesOneDial(t *testing.T) {
	var dials atomic.Int32
	release := make(chan struct{})
	server := mockServer(t, func(conn *websocket.Conn) {
		dials.Add(1)
		<-release // hold the handshake so both callers overlap
		handshakeThenHold(conn)
	})
	defer server.Close()

	c := New(testConfig(wsURL(server)), nil)
	defer c.Close()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Connect(context.Background())
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: Connect failed: %v", i, err)
		}
	}
	if n := dials.Load(); n != 1 {
		t.Errorf("dials = %d, want 1", n)
	}
}

func TestSendRequiresConnected(t *testing.T) {
	c := New(testConfig("ws://127.0.0.1:0"), nil)

	err := c.Send(map[string]string{"content": "hi"})
	if err != ErrNotConnected {
		t.Errorf("Send error = %v, want ErrNotConnected", err)
	}
}

func TestSendWrapsEnvelope(t *testing.T) {
	frames := make(chan []byte, 1)
	server := mockServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connected"}`))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		frames <- data
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	c := New(testConfig(wsURL(server)), nil)
	defer c.Close()

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := c.Send(map[string]string{"content": "hi"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case data := <-frames:
		want := `{"type":"message","data":{"content":"hi"}}`
		if string(data) != want {
			t.Errorf("frame = %s, want %s", data, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the frame")
	}
}

func TestReconnectAfterUnexpectedClose(t *testing.T) {
	var dials atomic.Int32
	server := mockServer(t, func(conn *websocket.Conn) {
		n := dials.Add(1)
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connected"}`))
		if n == 1 {
			// Drop the first connection without a close frame.
			conn.Close()
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	cfg := testConfig(wsURL(server))
	cfg.AutoReconnect = true
	c := New(cfg, nil)
	defer c.Close()

	reconnected := make(chan struct{}, 4)
	c.Events().On(EventStatusChange, func(p any) {
		if p == StatusConnected {
			reconnected <- struct{}{}
		}
	})

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for dials.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("no reconnect, dials = %d", dials.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}

	select {
	case <-reconnected:
	case <-time.After(5 * time.Second):
		t.Fatal("never returned to connected after reconnect")
	}
}

func TestCloseSuppressesReconnect(t *testing.T) {
	var dials atomic.Int32
	server := mockServer(t, func(conn *websocket.Conn) {
		dials.Add(1)
		handshakeThenHold(conn)
	})
	defer server.Close()

	cfg := testConfig(wsURL(server))
	cfg.AutoReconnect = true
	c := New(cfg, nil)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if got := c.Status(); got != StatusClosed {
		t.Errorf("Status = %v, want %v", got, StatusClosed)
	}

	// Give any stray reconnect timer a chance to fire.
	time.Sleep(100 * time.Millisecond)
	if n := dials.Load(); n != 1 {
		t.Errorf("dials = %d after Close, want 1", n)
	}

	// Close twice is fine; Connect after Close is refused.
	if err := c.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := c.Connect(context.Background()); err != ErrClosed {
		t.Errorf("Connect after Close = %v, want ErrClosed", err)
	}
}

func TestSessionInvalidCloseIsTerminal(t *testing.T) {
	var dials atomic.Int32
	server := mockServer(t, func(conn *websocket.Conn) {
		dials.Add(1)
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connected"}`))
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(CloseSessionInvalid, "session expired"),
			time.Now().Add(time.Second),
		)
		conn.Close()
	})
	defer server.Close()

	cfg := testConfig(wsURL(server))
	cfg.AutoReconnect = true
	c := New(cfg, nil)
	defer c.Close()

	disconnects := make(chan Disconnect, 1)
	c.Events().On(EventDisconnected, func(p any) {
		if d, ok := p.(Disconnect); ok {
			disconnects <- d
		}
	})

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	select {
	case d := <-disconnects:
		if !d.SessionInvalid {
			t.Errorf("SessionInvalid = false, code = %d", d.Code)
		}
		if d.Code != CloseSessionInvalid {
			t.Errorf("Code = %d, want %d", d.Code, CloseSessionInvalid)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no disconnect event")
	}

	time.Sleep(100 * time.Millisecond)
	if n := dials.Load(); n != 1 {
		t.Errorf("dials = %d after invalidation, want 1", n)
	}
}

func TestMalformedFramesAreDropped(t *testing.T) {
	acks := make(chan AckData, 1)
	server := mockServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connected"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`not json at all`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"message_ack","data":{"id":"m-1"}}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	c := New(testConfig(wsURL(server)), nil)
	defer c.Close()

	c.Events().On(EventMessageAck, func(p any) {
		if a, ok := p.(AckData); ok {
			acks <- a
		}
	})

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	// The malformed frame is dropped and the connection survives to
	// deliver the ack that follows it.
	select {
	case a := <-acks:
		if a.ID != "m-1" {
			t.Errorf("ack id = %q, want m-1", a.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ack after malformed frame never arrived")
	}
}

func TestBackoffDelaySchedule(t *testing.T) {
	base := time.Second
	max := 30 * time.Second

	var prevFloor time.Duration
	for attempt := 0; attempt <= 4; attempt++ {
		floor := base << uint(attempt)
		if floor > max {
			floor = max
		}
		if floor < prevFloor {
			t.Errorf("deterministic component decreased at attempt %d", attempt)
		}
		prevFloor = floor

		for i := 0; i < 20; i++ {
			d := backoffDelay(base, max, attempt)
			if d < floor {
				t.Errorf("attempt %d: delay %v below floor %v", attempt, d, floor)
			}
			if d > max+base/2 {
				t.Errorf("attempt %d: delay %v above cap plus jitter bound", attempt, d)
			}
		}
	}

	// Huge attempt counts stay capped.
	if d := backoffDelay(base, max, 64); d > max+base/2 {
		t.Errorf("capped delay %v exceeds bound", d)
	}
}
