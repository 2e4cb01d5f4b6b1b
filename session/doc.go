// Package session implements the correlation engine that gives the
// asynchronous conversation channel synchronous call semantics.
//
// Every send is two-phase. First it occupies a slot in a FIFO queue of
// unacknowledged sends; the server acknowledges sends in order without
// echoing a client id, so each ack resolves the oldest slot and carries
// the message's permanent id. A notification is finished at that point.
// A question moves to a map keyed by the permanent id and waits there
// for a response-bearing update, its deadline, session invalidation, or
// shutdown, exactly one of which resolves it.
package session
