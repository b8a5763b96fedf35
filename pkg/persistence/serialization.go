package persistence

import (
	"encoding/json"
	"fmt"
)

// MarshalTreeSnapshot serializes a TreeSnapshot to JSON bytes.
func MarshalTreeSnapshot(s *TreeSnapshot) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("cannot marshal nil TreeSnapshot")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TreeSnapshot to JSON: %w", err)
	}

	return data, nil
}

// UnmarshalTreeSnapshot deserializes a TreeSnapshot from JSON bytes.
func UnmarshalTreeSnapshot(data []byte) (*TreeSnapshot, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var s TreeSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to TreeSnapshot: %w", err)
	}

	return &s, nil
}
