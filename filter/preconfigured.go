package filter

import "github.com/corvidlabs/tbot/event"

// Ready-made filter values for common predicates, supplementing the generators above the same
// way the source ships a handful of pre-built filters alongside its generator functions.
//
//nolint:gochecknoglobals // Immutable filter values, analogous to the source's module-level filters.
var (
	IsPrivateChat = ChatTypes("private")
	IsGroupChat   = ChatTypes("group", "supergroup")

	HasCaption = AnyKeys("caption")
	IsReply    = AnyKeys("reply_to_message")
	IsForum    = SubKeys("chat", "is_forum")
	IsPremiumUser = SubKeys("from", "is_premium")
)

// HasText is truthy iff payload["text"] is a non-empty string.
func HasText(payload event.Payload) (bool, error) {
	text, ok := payload["text"].(string)

	return ok && text != "", nil
}

// ChatID extracts payload["chat"]["id"], the field most handlers need to reply. ok is false if
// the payload has no chat object or the id isn't a number.
func ChatID(payload event.Payload) (int64, bool) {
	chat, _ := payload["chat"].(map[string]any)

	return asInt64(chat["id"])
}
