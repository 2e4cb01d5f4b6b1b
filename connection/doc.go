// Package connection implements the Connection Manager component.
//
// A Conn:
//   - owns one websocket to a single conversation endpoint
//   - completes Connect only on the server's protocol handshake frame,
//     not on transport open
//   - reconnects after unexpected closes with capped exponential backoff
//   - emits inbound frames as events through its per-instance Emitter
//
// A close with status code CloseSessionInvalid means the server
// invalidated the conversation; it is surfaced distinctly and never
// reconnected.
package connection
