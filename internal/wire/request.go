package wire

import "encoding/json"

// APIResponse is the Bot API's wire envelope: {ok, result?, description?, parameters?}.
type APIResponse struct {
	Ok          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  ResponseParams  `json:"parameters,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// ResponseParams carries the two optional fields Telegram attaches to certain error responses.
type ResponseParams struct {
	MigrateToChatID int64 `json:"migrate_to_chat_id,omitempty"`
	RetryAfter      int   `json:"retry_after,omitempty"`
}

// RequestDescriptor is built per call and discarded once the call completes.
type RequestDescriptor struct {
	MethodName  string
	Params      map[string]any
	FileParams  []string
	MediaParams map[string][]string
	Timeout     int // seconds; 0 means "use the pipeline default"
	CatchErrors bool
}
