package models

import (
	"encoding/json"
	"fmt"
)

// JSONB is a free-form object stored in a jsonb column
type JSONB map[string]interface{}

// ParseJSONB decodes a jsonb column value. Empty input yields an empty map.
func ParseJSONB(raw []byte) (JSONB, error) {
	out := JSONB{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to parse jsonb: %w", err)
	}
	return out, nil
}

// Bytes encodes the value for a jsonb column, writing {} for nil
func (j JSONB) Bytes() ([]byte, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}
