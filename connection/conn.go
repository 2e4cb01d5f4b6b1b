package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/singleflight"

	"github.com/parley-sh/parley/events"
	"github.com/parley-sh/parley/model"
)

// Conn owns one duplexed channel to a single conversation endpoint. It
// tracks lifecycle status, reconnects after unexpected closes, and fans
// inbound frames out through its Emitter.
type Conn struct {
	cfg     Config
	logger  *slog.Logger
	emitter *events.Emitter

	// group collapses concurrent Connect callers onto one dial.
	group singleflight.Group

	mu             sync.Mutex
	status         Status
	ws             *websocket.Conn
	done           chan struct{} // closed to detach the current read loop
	manualClose    bool
	attempts       int
	reconnectTimer *time.Timer

	writeMu sync.Mutex
}

// New creates a Conn for the given endpoint. Pass nil logger for default.
func New(cfg Config, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()
	return &Conn{
		cfg:     cfg,
		logger:  logger.With("component", "connection"),
		emitter: events.NewEmitter(logger),
		status:  StatusDisconnected,
	}
}

// Events returns the connection's event registry.
func (c *Conn) Events() *events.Emitter { return c.emitter }

// Status returns the current lifecycle state.
func (c *Conn) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Connect opens the channel and waits for the server's handshake frame.
// It is idempotent: an already-connected Conn returns immediately, and
// concurrent callers before completion share one outcome. A transport
// that opens but never completes the application handshake is a failure.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.status {
	case StatusClosed:
		c.mu.Unlock()
		return ErrClosed
	case StatusConnected:
		c.mu.Unlock()
		return nil
	}
	// A manual connect after the retry budget ran out starts fresh.
	c.attempts = 0
	c.mu.Unlock()

	ch := c.group.DoChan("connect", func() (any, error) {
		return nil, c.dial(ctx)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send wraps the payload in the outbound message envelope and writes it.
// The connection must be in StatusConnected.
func (c *Conn) Send(payload any) error {
	c.mu.Lock()
	ws := c.ws
	connected := c.status == StatusConnected
	c.mu.Unlock()

	if !connected || ws == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(envelope{Type: frameMessage, Data: payload})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Close shuts the connection down for good. The read loop is detached
// before the socket closes so no error or reconnect callback fires
// mid-teardown, and any scheduled reconnect is cancelled.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.status == StatusClosed {
		c.mu.Unlock()
		return nil
	}
	c.manualClose = true
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	ws := c.ws
	done := c.done
	c.ws = nil
	c.done = nil
	c.status = StatusClosed
	c.mu.Unlock()

	if done != nil {
		close(done)
	}
	if ws != nil {
		ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		ws.Close()
	}

	c.emitter.Emit(EventStatusChange, StatusClosed)
	c.logger.Debug("connection closed")
	return nil
}

// dial opens the socket, starts the read loop, and waits for the
// handshake frame.
func (c *Conn) dial(ctx context.Context) error {
	c.setStatus(StatusConnecting)

	header := http.Header{}
	header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	ws, _, err := dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		c.setStatus(StatusError)
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}

	done := make(chan struct{})
	ready := make(chan error, 1)

	c.mu.Lock()
	if c.manualClose {
		c.mu.Unlock()
		ws.Close()
		return ErrClosed
	}
	c.ws = ws
	c.done = done
	c.mu.Unlock()

	go c.readLoop(ws, done, ready)

	timer := time.NewTimer(c.cfg.HandshakeTimeout)
	defer timer.Stop()

	select {
	case err := <-ready:
		if err != nil {
			c.teardown(ws, done)
			c.setStatus(StatusError)
			return err
		}
	case <-timer.C:
		c.teardown(ws, done)
		c.setStatus(StatusError)
		return ErrHandshakeTimeout
	case <-ctx.Done():
		c.teardown(ws, done)
		c.setStatus(StatusError)
		return ctx.Err()
	}

	c.logger.Info("connected", "url", c.cfg.URL)
	return nil
}

// teardown detaches and closes a socket that never finished its
// handshake. Only the goroutine that still owns the socket closes done.
func (c *Conn) teardown(ws *websocket.Conn, done chan struct{}) {
	c.mu.Lock()
	owned := c.ws == ws
	if owned {
		c.ws = nil
		c.done = nil
	}
	c.mu.Unlock()

	if owned {
		close(done)
	}
	ws.Close()
}

// readLoop reads frames from the socket, decodes them, and emits events.
// Malformed frames are dropped and the connection stays open.
func (c *Conn) readLoop(ws *websocket.Conn, done chan struct{}, ready chan<- error) {
	handshook := false

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			select {
			case <-done:
				// Deliberate teardown; handlers already detached.
				return
			default:
			}
			if !handshook {
				ready <- fmt.Errorf("before handshake: %w", err)
				return
			}
			c.handleReadError(ws, err)
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.logger.Warn("dropping malformed frame", "error", err)
			continue
		}

		switch f.Type {
		case frameConnected:
			if !handshook {
				handshook = true
				c.markConnected()
				ready <- nil
			}
			c.emitter.Emit(EventConnected, nil)

		case frameMessage, frameMessageUpdated:
			var m model.Message
			if err := json.Unmarshal(f.Data, &m); err != nil {
				c.logger.Warn("dropping malformed message frame", "error", err)
				continue
			}
			if f.Type == frameMessage {
				c.emitter.Emit(EventMessage, &m)
			} else {
				c.emitter.Emit(EventMessageUpdated, &m)
			}

		case frameMessageAck:
			var a AckData
			if err := json.Unmarshal(f.Data, &a); err != nil {
				c.logger.Warn("dropping malformed ack frame", "error", err)
				continue
			}
			c.emitter.Emit(EventMessageAck, a)

		case frameError:
			var e errorData
			if err := json.Unmarshal(f.Data, &e); err != nil {
				c.logger.Warn("dropping malformed error frame", "error", err)
				continue
			}
			c.emitter.Emit(EventError, &ProtocolError{Code: e.Code, Message: e.Message})

		default:
			c.logger.Warn("dropping frame of unknown type", "type", f.Type)
		}
	}
}

// handleReadError reacts to an unexpected read failure after handshake:
// emit disconnected, then either tear down for good (session
// invalidation) or schedule a reconnect.
func (c *Conn) handleReadError(ws *websocket.Conn, err error) {
	code := 0
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		code = ce.Code
	}
	sessionInvalid := code == CloseSessionInvalid

	c.mu.Lock()
	if c.ws == ws {
		c.ws = nil
		c.done = nil
	}
	manual := c.manualClose
	changed := c.status != StatusDisconnected
	c.status = StatusDisconnected
	c.mu.Unlock()
	ws.Close()

	if manual {
		return
	}

	c.logger.Warn("connection lost", "code", code, "error", err)
	if changed {
		c.emitter.Emit(EventStatusChange, StatusDisconnected)
	}
	c.emitter.Emit(EventDisconnected, Disconnect{
		Code:           code,
		Err:            err,
		SessionInvalid: sessionInvalid,
	})

	if sessionInvalid {
		// The server invalidated the conversation; reconnecting would
		// only be refused.
		return
	}
	c.scheduleReconnect()
}

// scheduleReconnect arms the backoff timer for the next retry, unless
// the connection was closed manually, auto-reconnect is off, or the
// retry budget is spent.
func (c *Conn) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.manualClose || !c.cfg.AutoReconnect {
		return
	}
	if c.attempts >= c.cfg.MaxReconnectAttempts {
		c.logger.Warn("reconnect attempts exhausted, staying idle",
			"attempts", c.attempts,
		)
		return
	}

	delay := backoffDelay(c.cfg.ReconnectBaseDelay, c.cfg.ReconnectMaxDelay, c.attempts)
	c.logger.Info("scheduling reconnect",
		"attempt", c.attempts+1,
		"delay", delay,
	)
	c.reconnectTimer = time.AfterFunc(delay, c.retryConnect)
}

// retryConnect is the reconnect timer callback. Individual failures are
// swallowed and rescheduled; the attempt counter only moves here, on an
// actual retry.
func (c *Conn) retryConnect() {
	c.mu.Lock()
	if c.manualClose {
		c.mu.Unlock()
		return
	}
	c.attempts++
	attempt := c.attempts
	c.reconnectTimer = nil
	c.mu.Unlock()

	res := <-c.group.DoChan("connect", func() (any, error) {
		return nil, c.dial(context.Background())
	})
	if res.Err != nil {
		c.logger.Warn("reconnect failed", "attempt", attempt, "error", res.Err)
		c.scheduleReconnect()
	}
}

// markConnected records a successful handshake and resets the retry
// budget.
func (c *Conn) markConnected() {
	c.mu.Lock()
	c.status = StatusConnected
	c.attempts = 0
	c.mu.Unlock()
	c.emitter.Emit(EventStatusChange, StatusConnected)
}

func (c *Conn) setStatus(s Status) {
	c.mu.Lock()
	if c.status == s {
		c.mu.Unlock()
		return
	}
	c.status = s
	c.mu.Unlock()
	c.emitter.Emit(EventStatusChange, s)
}

// backoffDelay is min(base << attempt, max) plus up to half of base in
// jitter, so clients reconnecting together fan out.
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	if attempt > 30 {
		attempt = 30
	}
	d := base << uint(attempt)
	if d <= 0 || d > max {
		d = max
	}
	jitter := time.Duration(rand.Int64N(int64(base)/2 + 1))
	return d + jitter
}
