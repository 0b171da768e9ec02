package jsonmap

import (
	"encoding/json"
	"fmt"
)

// JSONMap represents a JSON object as a map.
type JSONMap map[string]interface{}

// FromJSON parses raw JSON into a JSONMap.
func FromJSON(raw []byte) (JSONMap, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("JSON string is empty")
	}

	var m JSONMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON object: %w", err)
	}
	return m, nil
}

// ToJSON serializes the JSONMap to JSON.
func (m *JSONMap) ToJSON() ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("JSONMap is nil")
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSONMap: %w", err)
	}
	return data, nil
}

// CopyWithout returns a shallow copy of the JSONMap with the given keys removed.
func (m JSONMap) CopyWithout(keys ...string) JSONMap {
	skip := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		skip[k] = struct{}{}
	}

	mCopy := make(JSONMap, len(m))
	for k, v := range m {
		if _, ok := skip[k]; !ok {
			mCopy[k] = v
		}
	}
	return mCopy
}

// RoundTrip re-marshals the JSONMap through JSON so that nested values use
// plain map[string]interface{} / []interface{} representations.
func (m JSONMap) RoundTrip() (JSONMap, error) {
	encoded, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSONMap: %w", err)
	}

	var doc JSONMap
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSONMap: %w", err)
	}
	return doc, nil
}
