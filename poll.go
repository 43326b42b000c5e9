package tbot

import (
	"context"
	"encoding/json"
	"os"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/corvidlabs/tbot/apierr"
	"github.com/corvidlabs/tbot/exitcode"
	"github.com/corvidlabs/tbot/internal/util/logging"
	"github.com/corvidlabs/tbot/internal/wire"
)

// maxRetriesSleep is how long the driver backs off after getUpdates itself exhausts its retries,
// before trying again; per spec §4.7 this is a fixed sleep, not exponential.
const maxRetriesSleep = 60 * time.Second

// StartPolling runs spec §4.7's long-poll loop until the context is cancelled, getUpdates fails
// with anything other than an exhausted retry budget, or a handler requests a restart. It blocks
// until one of those happens and returns the process exit code the caller should use.
func (b *Bot) StartPolling(ctx context.Context, dropPending bool) exitcode.Code {
	b.registry.Lock()
	b.pipeline.Open()

	if dropPending {
		b.dropPendingUpdates(ctx)
	}

	b.registry.RunStartup()
	b.isReady = true

	code := b.pollLoop(ctx)

	b.registry.RunShutdown(int(code))
	b.pipeline.Close()

	if code == exitcode.RestartRequested {
		b.execRestart()
	}

	return code
}

// StartIdle locks the registry, runs startup, and then blocks until ctx is cancelled without
// ever calling getUpdates — for bots driven entirely by Bot.ProcessUpdate from an external
// webhook server that still want the same lifecycle hooks and restart handling.
func (b *Bot) StartIdle(ctx context.Context) exitcode.Code {
	b.registry.Lock()
	b.pipeline.Open()
	b.registry.RunStartup()
	b.isReady = true

	code := exitcode.UserTerminated

	for {
		if b.registry.RestartRequested() {
			code = exitcode.RestartRequested
			break
		}

		select {
		case <-ctx.Done():
			code = exitcode.UserTerminated
		case <-time.After(time.Hour):
			continue
		}

		break
	}

	b.registry.RunShutdown(int(code))
	b.pipeline.Close()

	if code == exitcode.RestartRequested {
		b.execRestart()
	}

	return code
}

// dropPendingUpdates discards whatever is already queued on Telegram's side by requesting with
// offset=-1 and advancing past the last update returned, without dispatching any of them. Per
// spec §9's open question, this does not fire the shutdown lifecycle handler; it runs before
// startup, not instead of a real shutdown.
func (b *Bot) dropPendingUpdates(ctx context.Context) {
	updates, err := b.getUpdates(ctx, -1, 1, nil)
	if err != nil {
		logging.Errorf("dropping pending updates: %s", err)

		return
	}

	if len(updates) > 0 {
		b.offset = updates[len(updates)-1].ID + 1
	}
}

// pollLoop is the core of spec §4.7: fetch, dispatch, advance offset, repeat.
func (b *Bot) pollLoop(ctx context.Context) exitcode.Code {
	for {
		if b.registry.RestartRequested() {
			return exitcode.RestartRequested
		}

		select {
		case <-ctx.Done():
			return exitcode.UserTerminated
		default:
		}

		updates, err := b.getUpdates(ctx, b.offset, b.updateLimit, b.registry.AllowedUpdates())
		if err != nil {
			if code, stop := b.classifyPollError(ctx, err); stop {
				return code
			}

			continue
		}

		for _, upd := range updates {
			if dispatchErr := b.dispatcher.Dispatch(ctx, upd); dispatchErr != nil {
				logging.Errorf("dispatching update #%d: %s", upd.ID, dispatchErr)
			}

			b.offset = upd.ID + 1
		}
	}
}

// classifyPollError turns a getUpdates failure into either "keep polling" (stop=false, after
// sleeping as appropriate) or a terminal exit code.
func (b *Bot) classifyPollError(ctx context.Context, err error) (code exitcode.Code, stop bool) {
	var maxRetries *apierr.MaxRetriesExceededError
	if errors.As(err, &maxRetries) {
		logging.Errorf("getUpdates exceeded its retry budget: %s", err)
		time.Sleep(maxRetriesSleep)

		return 0, false
	}

	if ctx.Err() != nil {
		return exitcode.UserTerminated, true
	}

	var telegramErr *apierr.TelegramError
	if errors.As(err, &telegramErr) {
		if telegramErr.Critical {
			return exitcode.CriticalTelegramError, true
		}

		return exitcode.UnexpectedTelegramError, true
	}

	logging.Errorf("unexpected error from getUpdates: %s", err)

	return exitcode.UnexpectedError, true
}

// getUpdates calls the getUpdates method directly against the pipeline (rather than through
// Bot.Call) so it can decode the result into []wire.Update instead of the generic map shape every
// other method returns.
func (b *Bot) getUpdates(ctx context.Context, offset int64, limit int, allowedUpdates []string) ([]wire.Update, error) {
	params := map[string]any{
		"offset":  offset,
		"timeout": b.pollingTimeout,
	}

	if limit > 0 {
		params["limit"] = limit
	}

	if len(allowedUpdates) > 0 {
		params["allowed_updates"] = allowedUpdates
	}

	desc := wire.RequestDescriptor{
		MethodName: "getUpdates",
		Params:     params,
		// The HTTP read timeout must outlive Telegram's own long-poll wait.
		Timeout:     b.pollingTimeout + 10,
		CatchErrors: false,
	}

	result, err := b.pipeline.Do(ctx, desc, decodeUpdates)
	if err != nil {
		return nil, err
	}

	updates, _ := result.([]wire.Update)

	return updates, nil
}

func decodeUpdates(raw json.RawMessage) (any, error) {
	var rawUpdates []json.RawMessage
	if err := json.Unmarshal(raw, &rawUpdates); err != nil {
		return nil, err
	}

	updates := make([]wire.Update, 0, len(rawUpdates))

	for _, r := range rawUpdates {
		upd, err := wire.ParseUpdate(r)
		if err != nil {
			return nil, err
		}

		updates = append(updates, upd)
	}

	return updates, nil
}

// execRestart re-execs the current process with its original argv and environment, replacing it
// in place. It never returns on success; on failure it logs and lets the process exit normally.
func (b *Bot) execRestart() {
	exe, err := os.Executable()
	if err != nil {
		logging.Errorf("resolving executable path for restart: %s", err)

		return
	}

	if err := syscall.Exec(exe, os.Args, os.Environ()); err != nil { //nolint:gosec // re-exec of self
		logging.Errorf("re-exec for restart failed: %s", err)
	}
}
