// Package wire holds the dynamic JSON envelope types shared by the request pipeline and the
// dispatch engine. Update payloads are always dynamic maps; this package never models the Bot
// API's object schema.
package wire

import (
	"encoding/json"
	"fmt"
)

// Update is one top-level event delivered by long-poll or webhook: a monotonic ID plus exactly
// one category payload, extracted structurally rather than by a fixed schema.
type Update struct {
	ID       int64
	Category string
	Payload  map[string]any
}

// ParseUpdate extracts ID and the single non-update_id key from a raw Bot API update object.
func ParseUpdate(raw json.RawMessage) (Update, error) {
	var fields map[string]json.RawMessage

	if err := json.Unmarshal(raw, &fields); err != nil {
		return Update{}, fmt.Errorf("decoding update envelope: %w", err)
	}

	idRaw, ok := fields["update_id"]
	if !ok {
		return Update{}, fmt.Errorf("update is missing update_id")
	}

	var id int64
	if err := json.Unmarshal(idRaw, &id); err != nil {
		return Update{}, fmt.Errorf("decoding update_id: %w", err)
	}

	delete(fields, "update_id")

	if len(fields) != 1 {
		return Update{}, fmt.Errorf("expected exactly one category key besides update_id, got %d", len(fields))
	}

	for category, payloadRaw := range fields {
		var payload map[string]any

		if err := json.Unmarshal(payloadRaw, &payload); err != nil {
			return Update{}, fmt.Errorf("decoding %s payload: %w", category, err)
		}

		return Update{ID: id, Category: category, Payload: payload}, nil
	}

	panic("unreachable: len(fields) == 1 checked above")
}

// DeepCopy recursively clones a JSON-like value (map[string]any, []any, or a scalar), so that one
// permanent handler mutating its copy of a payload cannot affect another.
func DeepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, nested := range val {
			out[k] = DeepCopy(nested)
		}

		return out
	case []any:
		out := make([]any, len(val))
		for i, nested := range val {
			out[i] = DeepCopy(nested)
		}

		return out
	default:
		return val
	}
}
