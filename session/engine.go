package session

import (
	"time"

	"github.com/parley-sh/parley/connection"
	"github.com/parley-sh/parley/contract"
	"github.com/parley-sh/parley/model"
)

type opKind int

const (
	opLog opKind = iota
	opAsk
)

type ackOutcome struct {
	id  string
	err error
}

type askOutcome struct {
	resp *contract.Response
	err  error
}

// pendingOp is one outstanding send. Before its ack arrives it lives in
// the FIFO queue under its local sequence number; a question then moves
// to the questions map under the permanent id the ack assigned. The
// done flag guarantees each entry resolves exactly once, whichever of
// response, timeout, invalidation, or shutdown fires first.
type pendingOp struct {
	seq    uint64
	kind   opKind
	done   bool
	permID string
	schema contract.Schema
	timer  *time.Timer
	ackCh  chan ackOutcome
	respCh chan askOutcome
}

// transmit reserves the next sequence slot, enqueues the pending entry,
// and writes the payload, all under sendMu so queue order always
// matches wire order. A failed write removes the entry again: nothing
// went out, so no ack will come for it.
func (s *Session) transmit(kind opKind, out outboundMessage, schema contract.Schema) (*pendingOp, error) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.nextSeq++
	op := &pendingOp{
		seq:    s.nextSeq,
		kind:   kind,
		schema: schema,
		ackCh:  make(chan ackOutcome, 1),
		respCh: make(chan askOutcome, 1),
	}
	s.acks = append(s.acks, op)
	s.mu.Unlock()

	if err := s.conn.Send(out); err != nil {
		s.mu.Lock()
		for i := len(s.acks) - 1; i >= 0; i-- {
			if s.acks[i] == op {
				s.acks = append(s.acks[:i], s.acks[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		return nil, err
	}
	return op, nil
}

// onAck resolves the oldest pending entry. The wire protocol does not
// echo which send an ack belongs to; correlation is strictly FIFO.
func (s *Session) onAck(payload any) {
	ack, ok := payload.(connection.AckData)
	if !ok {
		return
	}

	s.mu.Lock()
	if len(s.acks) == 0 {
		s.mu.Unlock()
		s.logger.Warn("ack with no pending send", "id", ack.ID)
		return
	}
	op := s.acks[0]
	s.acks = s.acks[1:]

	if op.done {
		// An abandoned or expired entry still consumes its ack slot;
		// the assigned id is simply ignored.
		s.mu.Unlock()
		return
	}

	switch op.kind {
	case opLog:
		op.done = true
		s.mu.Unlock()
		op.ackCh <- ackOutcome{id: ack.ID}
	case opAsk:
		// Phase two: the entry is now addressable by its permanent id.
		op.permID = ack.ID
		s.questions[ack.ID] = op
		s.mu.Unlock()
	}
}

// onUpdated resolves a question when a response-bearing update arrives
// for its permanent id. Updates for unknown or already-resolved ids
// have no effect.
func (s *Session) onUpdated(payload any) {
	m, ok := payload.(*model.Message)
	if !ok || !m.Answered() {
		return
	}

	s.mu.Lock()
	op, ok := s.questions[m.ID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.questions, m.ID)
	op.done = true
	if op.timer != nil {
		op.timer.Stop()
	}
	s.mu.Unlock()

	var content string
	if m.ResponseContent != nil {
		content = *m.ResponseContent
	}
	op.respCh <- askOutcome{resp: op.schema.Decode(content)}
}

// onDisconnected tears everything down on session invalidation. An
// ordinary transient disconnect leaves entries alive awaiting
// reconnection, bounded by each question's own deadline.
func (s *Session) onDisconnected(payload any) {
	d, ok := payload.(connection.Disconnect)
	if !ok {
		return
	}
	if d.SessionInvalid {
		s.failAll(ErrSessionExpired)
	}
}

// expire fails a question whose deadline elapsed before its answer.
func (s *Session) expire(op *pendingOp) {
	s.mu.Lock()
	if op.done {
		s.mu.Unlock()
		return
	}
	op.done = true
	if op.permID != "" {
		delete(s.questions, op.permID)
	}
	s.mu.Unlock()

	op.respCh <- askOutcome{err: ErrTimeout}
}

// abandon marks an entry resolved on behalf of a caller that stopped
// waiting. The entry stays in the FIFO queue if its ack is still owed,
// so later acks keep lining up with their sends.
func (s *Session) abandon(op *pendingOp) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if op.done {
		return
	}
	op.done = true
	if op.timer != nil {
		op.timer.Stop()
	}
	if op.permID != "" {
		delete(s.questions, op.permID)
	}
}

// failAll rejects every outstanding entry with cause and clears both
// structures. Used for session invalidation and explicit shutdown.
func (s *Session) failAll(cause error) {
	s.mu.Lock()
	var failed []*pendingOp
	for _, op := range s.acks {
		if op.done {
			continue
		}
		op.done = true
		if op.timer != nil {
			op.timer.Stop()
		}
		failed = append(failed, op)
	}
	s.acks = nil
	for _, op := range s.questions {
		if op.done {
			continue
		}
		op.done = true
		if op.timer != nil {
			op.timer.Stop()
		}
		failed = append(failed, op)
	}
	s.questions = make(map[string]*pendingOp)
	s.mu.Unlock()

	for _, op := range failed {
		switch op.kind {
		case opLog:
			op.ackCh <- ackOutcome{err: cause}
		case opAsk:
			op.respCh <- askOutcome{err: cause}
		}
	}

	if len(failed) > 0 {
		s.logger.Warn("rejected outstanding operations",
			"count", len(failed),
			"cause", cause,
		)
	}
}
