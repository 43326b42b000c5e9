// Package tbot is a client library for the Telegram Bot API: register event handlers keyed on
// update categories, pull updates via long polling (or feed them in from a webhook server), and
// invoke Bot API methods with multipart file upload, retry/backoff, and typed error
// classification.
package tbot

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/corvidlabs/tbot/download"
	"github.com/corvidlabs/tbot/event"
	"github.com/corvidlabs/tbot/internal/request"
	"github.com/corvidlabs/tbot/internal/wire"
)

//nolint:gochecknoglobals // Validation pattern from spec §6's Configuration section.
var tokenPattern = regexp.MustCompile(`^\d{6,}:[A-Za-z0-9_-]+$`)

// Bot is the library's entry point: one per bot token, one event loop, one shared HTTP client.
type Bot struct {
	pipeline   *request.Pipeline
	registry   *event.Registry
	dispatcher *event.Dispatcher

	token          string
	baseFileURL    string
	pollingTimeout int
	updateLimit    int

	offset  int64
	isReady bool
}

type botConfig struct {
	baseAPIURL            string
	baseFileURL           string
	pollingTimeout        int
	updateLimit           int
	maxRetries            int
	defaultTimeout        time.Duration
	maxTimeout            time.Duration
	maxConcurrentRequests int64
	handlerConcurrency    int64
}

func defaultBotConfig() botConfig {
	return botConfig{
		baseFileURL:           "https://api.telegram.org/file",
		pollingTimeout:        20,
		maxConcurrentRequests: 50,
		handlerConcurrency:    8,
	}
}

// Option configures a Bot at construction time.
type Option func(*botConfig)

func WithBaseAPIURL(url string) Option   { return func(c *botConfig) { c.baseAPIURL = url } }
func WithBaseFileURL(url string) Option  { return func(c *botConfig) { c.baseFileURL = url } }
func WithPollingTimeout(sec int) Option  { return func(c *botConfig) { c.pollingTimeout = sec } }
func WithUpdateLimit(n int) Option       { return func(c *botConfig) { c.updateLimit = n } }
func WithMaxRetries(n int) Option        { return func(c *botConfig) { c.maxRetries = n } }
func WithDefaultTimeout(d time.Duration) Option { return func(c *botConfig) { c.defaultTimeout = d } }
func WithMaxTimeout(d time.Duration) Option     { return func(c *botConfig) { c.maxTimeout = d } }

func WithMaxConcurrentRequests(n int64) Option {
	return func(c *botConfig) { c.maxConcurrentRequests = n }
}

func WithHandlerConcurrency(n int64) Option {
	return func(c *botConfig) { c.handlerConcurrency = n }
}

// NewBot validates token and builds a Bot ready to have handlers registered on it. Call
// StartPolling or StartIdle to actually begin processing updates.
func NewBot(token string, opts ...Option) (*Bot, error) {
	if !tokenPattern.MatchString(token) {
		return nil, fmt.Errorf("invalid bot token format")
	}

	cfg := defaultBotConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	registry := event.NewRegistry()

	return &Bot{
		token: token,
		pipeline: request.NewPipeline(token, request.Config{
			BaseAPIURL:            cfg.baseAPIURL,
			MaxConcurrentRequests: cfg.maxConcurrentRequests,
			MaxRetries:            cfg.maxRetries,
			DefaultTimeout:        cfg.defaultTimeout,
			MaxTimeout:            cfg.maxTimeout,
		}),
		registry:       registry,
		dispatcher:     event.NewDispatcher(registry, cfg.handlerConcurrency),
		baseFileURL:    cfg.baseFileURL,
		pollingTimeout: cfg.pollingTimeout,
		updateLimit:    cfg.updateLimit,
	}, nil
}

// On registers a permanent handler for category. Fails once polling has started.
func (b *Bot) On(category string, handler event.Invocable, filters ...event.Filter) error {
	return b.registry.On(category, handler, filters...)
}

// OnStartup registers the singleton startup lifecycle handler.
func (b *Bot) OnStartup(fn event.StartupFunc) error { return b.registry.OnStartup(fn) }

// OnShutdown registers the singleton shutdown lifecycle handler.
func (b *Bot) OnShutdown(fn event.ShutdownFunc) error { return b.registry.OnShutdown(fn) }

// WaitFor registers a temporary, one-shot handler. Legal at any point, including from inside a
// running handler.
func (b *Bot) WaitFor(th *event.TemporaryHandler) { b.registry.WaitFor(th) }

// RequestRestart asks the polling driver to shut down and re-exec the process once the current
// batch finishes. Equivalent to returning event.RestartRequested from a handler.
func (b *Bot) RequestRestart() { b.registry.RequestRestart() }

// CallOption adjusts one invocation of Call.
type CallOption func(*wire.RequestDescriptor)

// WithFileParams declares which top-level params are file-bearing for this call.
func WithFileParams(names ...string) CallOption {
	return func(d *wire.RequestDescriptor) { d.FileParams = names }
}

// WithMediaParams declares, for a media-group-style param, which sub-fields within each item may
// themselves be files.
func WithMediaParams(media map[string][]string) CallOption {
	return func(d *wire.RequestDescriptor) { d.MediaParams = media }
}

// WithCallTimeout overrides the default per-call timeout, in seconds.
func WithCallTimeout(sec int) CallOption {
	return func(d *wire.RequestDescriptor) { d.Timeout = sec }
}

// DontCatchErrors makes Call propagate failures instead of logging and swallowing them.
func DontCatchErrors() CallOption {
	return func(d *wire.RequestDescriptor) { d.CatchErrors = false }
}

// Call is the generic Bot API invocation entry point; per-method wrappers in api.go are optional
// sugar built on top of it.
func (b *Bot) Call(ctx context.Context, methodName string, params map[string]any, opts ...CallOption) (any, error) {
	desc := wire.RequestDescriptor{
		MethodName:  methodName,
		Params:      params,
		CatchErrors: true,
	}

	for _, o := range opts {
		o(&desc)
	}

	return b.pipeline.Do(ctx, desc, nil)
}

// Download returns a builder with streaming/bytes/file/base64 terminal operations for the file
// identified by fileID (e.g. a message's photo/document/voice file_id).
func (b *Bot) Download(fileID string) *download.Builder {
	return download.NewBuilder(fileResolver{b}, b.pipeline.HTTPClient(), b.baseFileURL, b.token, fileID)
}

type fileResolver struct{ bot *Bot }

func (r fileResolver) ResolveFilePath(ctx context.Context, fileID string) (string, error) {
	result, err := r.bot.Call(ctx, "getFile", map[string]any{"file_id": fileID}, DontCatchErrors())
	if err != nil {
		return "", fmt.Errorf("calling getFile: %w", err)
	}

	file, ok := result.(map[string]any)
	if !ok {
		return "", fmt.Errorf("getFile returned an unexpected shape")
	}

	path, ok := file["file_path"].(string)
	if !ok {
		return "", fmt.Errorf("getFile result has no file_path")
	}

	return path, nil
}

// ProcessUpdate ingests a single raw update JSON object, for callers hosting their own webhook
// HTTP server. It runs the same dispatch sequence StartPolling uses internally.
func (b *Bot) ProcessUpdate(ctx context.Context, raw json.RawMessage) error {
	upd, err := wire.ParseUpdate(raw)
	if err != nil {
		return fmt.Errorf("parsing update: %w", err)
	}

	return b.dispatcher.Dispatch(ctx, upd)
}
