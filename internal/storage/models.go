package storage

import (
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// encodeStrings stores a string slice as a JSON array in a text column.
func encodeStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// decodeStrings tolerates malformed column data: it returns an empty
// slice rather than failing the whole row.
func decodeStrings(raw string) []string {
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil || values == nil {
		return []string{}
	}
	return values
}
