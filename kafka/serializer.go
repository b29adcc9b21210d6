package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/aalemi-dev/sockettrace/record"
)

// Serializer encodes a record into a message value.
type Serializer interface {
	Serialize(r record.RequestRecord) ([]byte, error)
}

// SerializerFunc adapts a function to Serializer.
type SerializerFunc func(r record.RequestRecord) ([]byte, error)

// Serialize calls f(r).
func (f SerializerFunc) Serialize(r record.RequestRecord) ([]byte, error) {
	return f(r)
}

// JSONSerializer is the default serializer. IDs are encoded as lowercase hex.
type JSONSerializer struct{}

// Serialize converts r to JSON bytes.
func (j *JSONSerializer) Serialize(r record.RequestRecord) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("JSONSerializer: failed to serialize: %w", err)
	}
	return b, nil
}
