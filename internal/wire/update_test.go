package wire

import "testing"

func TestParseUpdate(t *testing.T) {
	raw := []byte(`{"update_id": 42, "message": {"text": "hi", "chat": {"id": 1}}}`)

	upd, err := ParseUpdate(raw)
	if err != nil {
		t.Fatalf("ParseUpdate failed: %v", err)
	}

	if upd.ID != 42 {
		t.Fatalf("expected ID 42, got %d", upd.ID)
	}

	if upd.Category != "message" {
		t.Fatalf("expected category message, got %s", upd.Category)
	}

	if upd.Payload["text"] != "hi" {
		t.Fatalf("expected text hi, got %v", upd.Payload["text"])
	}
}

func TestParseUpdateMissingUpdateID(t *testing.T) {
	_, err := ParseUpdate([]byte(`{"message": {}}`))
	if err == nil {
		t.Fatal("expected an error when update_id is missing")
	}
}

func TestParseUpdateRequiresExactlyOneCategory(t *testing.T) {
	_, err := ParseUpdate([]byte(`{"update_id": 1, "message": {}, "edited_message": {}}`))
	if err == nil {
		t.Fatal("expected an error when more than one category key is present")
	}

	_, err = ParseUpdate([]byte(`{"update_id": 1}`))
	if err == nil {
		t.Fatal("expected an error when no category key is present")
	}
}

func TestDeepCopyIsolatesNestedMutation(t *testing.T) {
	original := map[string]any{
		"chat": map[string]any{"id": float64(1)},
		"tags": []any{"a", "b"},
	}

	clone, ok := DeepCopy(original).(map[string]any)
	if !ok {
		t.Fatal("expected DeepCopy of a map to return a map")
	}

	clonedChat, ok := clone["chat"].(map[string]any)
	if !ok {
		t.Fatal("expected nested chat to also be a map")
	}

	clonedChat["id"] = float64(999)

	originalChat, ok := original["chat"].(map[string]any)
	if !ok {
		t.Fatal("expected original chat to still be a map")
	}

	if originalChat["id"] != float64(1) {
		t.Fatal("mutating the clone's nested map should not affect the original")
	}

	clonedTags, ok := clone["tags"].([]any)
	if !ok {
		t.Fatal("expected nested tags to be a slice")
	}

	clonedTags[0] = "mutated"

	originalTags, ok := original["tags"].([]any)
	if !ok {
		t.Fatal("expected original tags to still be a slice")
	}

	if originalTags[0] != "a" {
		t.Fatal("mutating the clone's slice should not affect the original")
	}
}
