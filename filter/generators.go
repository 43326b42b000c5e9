package filter

import (
	"regexp"
	"strings"

	"github.com/corvidlabs/tbot/event"
)

// AnyKeys is truthy iff at least one of keys is present in the payload. Panics if keys is empty,
// mirroring the source's assertion that a filter generator always needs at least one argument.
func AnyKeys(keys ...string) Filter {
	mustNotEmpty(keys)

	return func(payload event.Payload) (bool, error) {
		for _, k := range keys {
			if _, ok := payload[k]; ok {
				return true, nil
			}
		}

		return false, nil
	}
}

// AllKeys is truthy iff every one of keys is present in the payload.
func AllKeys(keys ...string) Filter {
	mustNotEmpty(keys)

	return func(payload event.Payload) (bool, error) {
		for _, k := range keys {
			if _, ok := payload[k]; !ok {
				return false, nil
			}
		}

		return true, nil
	}
}

// SubKeys checks if keySequence is recursively present, e.g. SubKeys("chat", "is_forum") checks
// payload["chat"]["is_forum"] exists, regardless of its value.
func SubKeys(keySequence ...string) Filter {
	mustNotEmpty(keySequence)

	return func(payload event.Payload) (bool, error) {
		cur := any(payload)

		for _, k := range keySequence {
			m, ok := cur.(map[string]any)
			if !ok {
				return false, nil
			}

			cur, ok = m[k]
			if !ok {
				return false, nil
			}
		}

		return true, nil
	}
}

// Regex is truthy iff any of patterns matches payload["text"], or payload["caption"] if
// caption=true.
func Regex(caption bool, patterns ...string) Filter {
	mustNotEmpty(patterns)

	compiled := regexp.MustCompile(strings.Join(patterns, "|"))
	key := textKey(caption)

	return func(payload event.Payload) (bool, error) {
		text, _ := payload[key].(string)

		return compiled.MatchString(text), nil
	}
}

// TextStartsWith is truthy iff payload["text"] (or "caption") starts with any of substrings.
func TextStartsWith(caption bool, substrings ...string) Filter {
	mustNotEmpty(substrings)

	key := textKey(caption)

	return func(payload event.Payload) (bool, error) {
		text, _ := payload[key].(string)

		for _, s := range substrings {
			if strings.HasPrefix(text, s) {
				return true, nil
			}
		}

		return false, nil
	}
}

// Commands is truthy iff the message (or caption, if caption=true) carries a bot_command entity
// at offset 0 whose token (before any "@botname" suffix) is one of commands.
func Commands(caption bool, commands ...string) Filter {
	mustNotEmpty(commands)

	wanted := make(map[string]struct{}, len(commands))
	for _, c := range commands {
		wanted[strings.TrimPrefix(c, "/")] = struct{}{}
	}

	tKey, entitiesKey := "text", "entities"
	if caption {
		tKey, entitiesKey = "caption", "caption_entities"
	}

	return func(payload event.Payload) (bool, error) {
		text, _ := payload[tKey].(string)
		entities, _ := payload[entitiesKey].([]any)

		for _, raw := range entities {
			entity, ok := raw.(map[string]any)
			if !ok {
				continue
			}

			if entityType, _ := entity["type"].(string); entityType != "bot_command" {
				continue
			}

			if offset, _ := asInt(entity["offset"]); offset != 0 {
				continue
			}

			length, _ := asInt(entity["length"])
			if length <= 1 || length > len(text) {
				continue
			}

			token := strings.SplitN(text[1:length], "@", 2)[0]
			if _, found := wanted[token]; found {
				return true, nil
			}
		}

		return false, nil
	}
}

// ChatIDs is truthy iff payload["chat"]["id"] is one of ids.
func ChatIDs(ids ...int64) Filter {
	mustNotEmpty(ids)

	wanted := toSet(ids)

	return func(payload event.Payload) (bool, error) {
		chat, _ := payload["chat"].(map[string]any)
		id, ok := asInt64(chat["id"])

		return ok && wanted[id], nil
	}
}

// ChatTypes is truthy iff payload["chat"]["type"] is one of types ("private", "group",
// "supergroup", "channel").
func ChatTypes(types ...string) Filter {
	mustNotEmpty(types)

	wanted := make(map[string]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}

	return func(payload event.Payload) (bool, error) {
		chat, _ := payload["chat"].(map[string]any)
		chatType, _ := chat["type"].(string)
		_, found := wanted[chatType]

		return found, nil
	}
}

// FromUsers is truthy iff payload["from"]["id"] is one of ids.
func FromUsers(ids ...int64) Filter {
	mustNotEmpty(ids)

	wanted := toSet(ids)

	return func(payload event.Payload) (bool, error) {
		from, _ := payload["from"].(map[string]any)
		id, ok := asInt64(from["id"])

		return ok && wanted[id], nil
	}
}

// CallbackData is truthy iff payload["data"] equals one of data. Meant for callback_query updates.
func CallbackData(data ...string) Filter {
	mustNotEmpty(data)

	wanted := make(map[string]struct{}, len(data))
	for _, d := range data {
		wanted[d] = struct{}{}
	}

	return func(payload event.Payload) (bool, error) {
		cbData, _ := payload["data"].(string)
		_, found := wanted[cbData]

		return found, nil
	}
}

// CallbackDataStartsWith is truthy iff payload["data"] starts with any of substrings.
func CallbackDataStartsWith(substrings ...string) Filter {
	mustNotEmpty(substrings)

	return func(payload event.Payload) (bool, error) {
		cbData, _ := payload["data"].(string)

		for _, s := range substrings {
			if strings.HasPrefix(cbData, s) {
				return true, nil
			}
		}

		return false, nil
	}
}

func textKey(caption bool) string {
	if caption {
		return "caption"
	}

	return "text"
}

func mustNotEmpty[T any](xs []T) {
	if len(xs) == 0 {
		panic("filter generator called with no arguments")
	}
}

func toSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	return set
}

// asInt64 handles the fact that encoding/json decodes all JSON numbers into any as float64.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	n, ok := asInt64(v)

	return int(n), ok
}
