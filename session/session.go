package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parley-sh/parley/connection"
	"github.com/parley-sh/parley/contract"
	"github.com/parley-sh/parley/events"
	"github.com/parley-sh/parley/model"
)

// outboundMessage is the data half of the outbound envelope.
type outboundMessage struct {
	Role     model.Role        `json:"role"`
	Type     model.MessageType `json:"type"`
	Content  string            `json:"content"`
	Inputs   []contract.Input  `json:"inputs,omitempty"`
	SenderID string            `json:"senderId,omitempty"`
	Persist  bool              `json:"persist"`
}

type listenerRef struct {
	event string
	id    events.ListenerID
}

// Session turns the asynchronous conversation channel into
// call-and-response semantics. It owns the two pending structures of
// the correlation engine: a FIFO queue of unacknowledged sends and a
// map of acknowledged questions awaiting their answer. No one else
// mutates them.
type Session struct {
	conn   *connection.Conn
	logger *slog.Logger

	senderID   string
	askTimeout time.Duration
	recipients int // -1 when unknown

	// sendMu serializes reserve+write so queue order matches wire order;
	// ack correlation depends on it.
	sendMu sync.Mutex

	mu        sync.Mutex
	nextSeq   uint64
	acks      []*pendingOp
	questions map[string]*pendingOp
	closed    bool

	subs []listenerRef
}

// New builds a Session over the given connection and subscribes to its
// correlation-relevant events.
func New(conn *connection.Conn, opts ...Option) *Session {
	s := &Session{
		conn:       conn,
		logger:     slog.Default(),
		senderID:   uuid.NewString(),
		askTimeout: DefaultAskTimeout,
		recipients: -1,
		questions:  make(map[string]*pendingOp),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "session")

	ev := conn.Events()
	s.subs = []listenerRef{
		{connection.EventMessageAck, ev.On(connection.EventMessageAck, s.onAck)},
		{connection.EventMessageUpdated, ev.On(connection.EventMessageUpdated, s.onUpdated)},
		{connection.EventDisconnected, ev.On(connection.EventDisconnected, s.onDisconnected)},
	}
	return s
}

// Conn returns the underlying connection.
func (s *Session) Conn() *connection.Conn { return s.conn }

// Events returns the connection's event registry, for external
// subscribers interested in raw protocol events.
func (s *Session) Events() *events.Emitter { return s.conn.Events() }

// Connect opens the underlying connection.
func (s *Session) Connect(ctx context.Context) error {
	return s.conn.Connect(ctx)
}

// Log sends a one-way notification and suspends until the server
// acknowledges it, returning the permanent message id.
func (s *Session) Log(ctx context.Context, content string, opts ...CallOption) (string, error) {
	set := callSettings{persist: true}
	for _, opt := range opts {
		opt(&set)
	}

	out := outboundMessage{
		Role:     model.RoleAgent,
		Type:     model.TypeLog,
		Content:  content,
		SenderID: s.senderID,
		Persist:  set.persist,
	}

	op, err := s.transmit(opLog, out, contract.Schema{})
	if err != nil {
		return "", err
	}

	select {
	case res := <-op.ackCh:
		return res.id, res.err
	case <-ctx.Done():
		s.abandon(op)
		return "", ctx.Err()
	}
}

// Ask sends a question with the given input descriptors and suspends
// until a participant answers, the deadline elapses, the session is
// invalidated, or the session closes. The answer is decoded against the
// schema derived from inputs; a non-conforming payload comes back as
// raw text, never an error.
func (s *Session) Ask(ctx context.Context, content string, inputs []contract.Input, opts ...CallOption) (*contract.Response, error) {
	if err := contract.Validate(inputs); err != nil {
		return nil, err
	}
	if s.recipients == 0 {
		return nil, ErrNoRecipients
	}

	set := callSettings{persist: true, timeout: s.askTimeout}
	for _, opt := range opts {
		opt(&set)
	}

	out := outboundMessage{
		Role:     model.RoleAgent,
		Type:     model.TypeAsk,
		Content:  content,
		Inputs:   inputs,
		SenderID: s.senderID,
		Persist:  set.persist,
	}

	op, err := s.transmit(opAsk, out, contract.NewSchema(inputs))
	if err != nil {
		return nil, err
	}

	// The deadline starts at send and covers both the ack wait and the
	// answer wait. Reconnection never extends it.
	s.mu.Lock()
	if !op.done {
		op.timer = time.AfterFunc(set.timeout, func() { s.expire(op) })
	}
	s.mu.Unlock()

	select {
	case res := <-op.respCh:
		return res.resp, res.err
	case <-ctx.Done():
		s.abandon(op)
		return nil, ctx.Err()
	}
}

// Stats reports outstanding correlation state.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		PendingAcks:      len(s.acks),
		PendingQuestions: len(s.questions),
	}
}

// Close rejects every outstanding entry with ErrClosed, detaches the
// session's listeners, and closes the connection.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.failAll(ErrClosed)

	ev := s.conn.Events()
	for _, ref := range s.subs {
		ev.Off(ref.event, ref.id)
	}
	return s.conn.Close()
}
