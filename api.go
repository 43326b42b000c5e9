package tbot

import "context"

// The wrappers below are optional sugar over Call (spec §4.8): they exist only to declare each
// method's file-bearing params up front instead of making every call site spell out WithFileParams.
// Params always take the raw map[string]any shape; Call still does all the staging and retry work.

// GetMe calls getMe.
func (b *Bot) GetMe(ctx context.Context) (any, error) {
	return b.Call(ctx, "getMe", nil)
}

// SendMessage calls sendMessage. params typically carries chat_id and text.
func (b *Bot) SendMessage(ctx context.Context, params map[string]any, opts ...CallOption) (any, error) {
	return b.Call(ctx, "sendMessage", params, opts...)
}

// SendPhoto calls sendPhoto. params["photo"] may be a local file path, an InputFile, raw bytes,
// or a Telegram file_id/URL string.
func (b *Bot) SendPhoto(ctx context.Context, params map[string]any, opts ...CallOption) (any, error) {
	opts = append([]CallOption{WithFileParams("photo")}, opts...)

	return b.Call(ctx, "sendPhoto", params, opts...)
}

// SendDocument calls sendDocument. params["document"] follows the same rules as SendPhoto's photo.
func (b *Bot) SendDocument(ctx context.Context, params map[string]any, opts ...CallOption) (any, error) {
	opts = append([]CallOption{WithFileParams("document")}, opts...)

	return b.Call(ctx, "sendDocument", params, opts...)
}

// SendVoice calls sendVoice. params["voice"] follows the same rules as SendPhoto's photo.
func (b *Bot) SendVoice(ctx context.Context, params map[string]any, opts ...CallOption) (any, error) {
	opts = append([]CallOption{WithFileParams("voice")}, opts...)

	return b.Call(ctx, "sendVoice", params, opts...)
}

// SendMediaGroup calls sendMediaGroup. params["media"] is a list of media item maps whose "media"
// sub-field may itself be a file.
func (b *Bot) SendMediaGroup(ctx context.Context, params map[string]any, opts ...CallOption) (any, error) {
	opts = append([]CallOption{WithMediaParams(map[string][]string{"media": {"media"}})}, opts...)

	return b.Call(ctx, "sendMediaGroup", params, opts...)
}

// AnswerCallbackQuery calls answerCallbackQuery.
func (b *Bot) AnswerCallbackQuery(ctx context.Context, params map[string]any, opts ...CallOption) (any, error) {
	return b.Call(ctx, "answerCallbackQuery", params, opts...)
}

// EditMessageText calls editMessageText.
func (b *Bot) EditMessageText(ctx context.Context, params map[string]any, opts ...CallOption) (any, error) {
	return b.Call(ctx, "editMessageText", params, opts...)
}

// DeleteMessage calls deleteMessage.
func (b *Bot) DeleteMessage(ctx context.Context, params map[string]any, opts ...CallOption) (any, error) {
	return b.Call(ctx, "deleteMessage", params, opts...)
}

// GetFile calls getFile directly; Bot.Download wraps this for streaming terminal operations.
func (b *Bot) GetFile(ctx context.Context, fileID string, opts ...CallOption) (any, error) {
	return b.Call(ctx, "getFile", map[string]any{"file_id": fileID}, opts...)
}

// LogOut calls logOut, always against the cloud endpoint regardless of the configured base URL.
func (b *Bot) LogOut(ctx context.Context) (any, error) {
	return b.Call(ctx, "logOut", nil)
}
