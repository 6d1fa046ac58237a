package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotMessage carries one store's full serialized collection across the
// sync channel. Whole-collection replace, no field-level merge: the newest
// message wins. Origin identifies the publishing device so consumers can
// drop their own echoes.
type SnapshotMessage struct {
	Key       string          `json:"key"`
	Origin    string          `json:"origin"`
	Timestamp time.Time       `json:"timestamp"`
	Body      json.RawMessage `json:"body"`
}

func NewSnapshotMessage(key, origin string, body []byte) *SnapshotMessage {
	return &SnapshotMessage{
		Key:       key,
		Origin:    origin,
		Timestamp: time.Now(),
		Body:      json.RawMessage(body),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *SnapshotMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotMessageFromJSON creates a message from JSON bytes.
func SnapshotMessageFromJSON(data []byte) (*SnapshotMessage, error) {
	var msg SnapshotMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
