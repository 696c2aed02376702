package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidPatch = errors.New("invalid patch")

// Merge overlays the top-level fields of patch onto current, the way an object
// spread would. Keys listed in protected are ignored. A field whose value does
// not fit the record type makes the whole patch invalid.
func Merge[T any](current T, patch map[string]json.RawMessage, protected ...string) (T, error) {
	base, err := json.Marshal(current)
	if err != nil {
		return current, fmt.Errorf("encode record: %w", err)
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &fields); err != nil {
		return current, fmt.Errorf("decode record: %w", err)
	}

	skip := make(map[string]struct{}, len(protected))
	for _, key := range protected {
		skip[key] = struct{}{}
	}
	for key, value := range patch {
		if _, ok := skip[key]; ok {
			continue
		}
		fields[key] = value
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return current, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}

	var next T
	if err := json.Unmarshal(merged, &next); err != nil {
		return current, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return next, nil
}
