package connection

import "encoding/json"

// Frame types on the inbound (server to client) side.
const (
	frameConnected      = "connected"
	frameMessage        = "message"
	frameMessageUpdated = "message_updated"
	frameMessageAck     = "message_ack"
	frameError          = "error"
)

// frame is the envelope for every frame in either direction,
// discriminated by Type.
type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// envelope wraps an outbound payload for transmission.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// AckData is the payload of a message_ack frame: the permanent id the
// server assigned to the oldest unacknowledged send.
type AckData struct {
	ID string `json:"id"`
}

// errorData is the payload of an error frame.
type errorData struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
