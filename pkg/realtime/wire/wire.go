// Package wire defines the realtime frame format and the JSON shapes shared
// by the server and its clients.
//
// Every frame is a single JSON text message:
//
//	{"type": "new_post", "payload": {...}}
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventType names the class of a broadcast event.
type EventType string

const (
	EventNewPost         EventType = "new_post"
	EventNewComment      EventType = "new_comment"
	EventNewNotification EventType = "new_notification"
)

func (t EventType) String() string { return string(t) }

// ErrMalformedFrame is returned by Decode for frames that are not a JSON
// object carrying a non-empty type.
var ErrMalformedFrame = errors.New("malformed frame")

// Envelope is the wire unit. Payload stays raw so subscribers decode only the
// shapes they care about.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode serializes one frame. The returned bytes are never mutated afterward
// and may be shared by every connection write.
func Encode(eventType EventType, payload any) ([]byte, error) {
	if eventType == "" {
		return nil, fmt.Errorf("encode frame: empty event type")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	frame, err := json.Marshal(Envelope{Type: eventType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", eventType, err)
	}
	return frame, nil
}

// Decode parses one frame.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}
	if len(env.Payload) == 0 {
		env.Payload = json.RawMessage("null")
	}
	return env, nil
}

// DecodePayload unmarshals an envelope payload into T.
func DecodePayload[T any](payload json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, fmt.Errorf("decode payload as %T: %w", v, err)
	}
	return v, nil
}
