package events

import (
	"testing"
)

func TestEmitInvokesInRegistrationOrder(t *testing.T) {
	e := NewEmitter(nil)

	var order []int
	e.On("tick", func(any) { order = append(order, 1) })
	e.On("tick", func(any) { order = append(order, 2) })
	e.On("tick", func(any) { order = append(order, 3) })

	e.Emit("tick", nil)

	if len(order) != 3 {
		t.Fatalf("got %d invocations, want 3", len(order))
	}
	for i, v := range order {
		if v != i+1 {
			t.Errorf("order[%d] = %d, want %d", i, v, i+1)
		}
	}
}

func TestEmitPassesPayload(t *testing.T) {
	e := NewEmitter(nil)

	var got any
	e.On("msg", func(p any) { got = p })
	e.Emit("msg", "hello")

	if got != "hello" {
		t.Errorf("payload = %v, want hello", got)
	}
}

func TestOffRemovesListener(t *testing.T) {
	e := NewEmitter(nil)

	calls := 0
	id := e.On("tick", func(any) { calls++ })
	e.Emit("tick", nil)
	e.Off("tick", id)
	e.Emit("tick", nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	// removing twice is a no-op
	e.Off("tick", id)
}

func TestPanickingListenerIsIsolated(t *testing.T) {
	e := NewEmitter(nil)

	var after bool
	e.On("tick", func(any) { panic("boom") })
	e.On("tick", func(any) { after = true })

	e.Emit("tick", nil)

	if !after {
		t.Error("listener after panicking one did not run")
	}
}

func TestEmittersAreInstanceScoped(t *testing.T) {
	a := NewEmitter(nil)
	b := NewEmitter(nil)

	calls := 0
	a.On("tick", func(any) { calls++ })
	b.Emit("tick", nil)

	if calls != 0 {
		t.Error("listener on one emitter fired from another")
	}
}

func TestEmitUnknownEventIsNoOp(t *testing.T) {
	e := NewEmitter(nil)
	e.Emit("nobody-listens", 42)
}
