package event

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/corvidlabs/tbot/apierr"
	"github.com/corvidlabs/tbot/internal/util"
	"github.com/corvidlabs/tbot/internal/util/logging"
	"github.com/corvidlabs/tbot/internal/wire"
)

// Dispatcher matches updates against a Registry and runs the chosen handler, bounding concurrent
// handler executions with a weighted semaphore independent of the request pipeline's own gate.
type Dispatcher struct {
	registry *Registry
	sem      *semaphore.Weighted
}

// NewDispatcher wires a Dispatcher to registry with maxConcurrentHandlers as the handler-rate
// semaphore capacity (spec default: 8).
func NewDispatcher(registry *Registry, maxConcurrentHandlers int64) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		sem:      semaphore.NewWeighted(maxConcurrentHandlers),
	}
}

// Dispatch runs the full sequence from spec §4.6 for a single update: temporary handlers first,
// then permanent ones, honoring Unhandled and expiry along the way.
func (d *Dispatcher) Dispatch(ctx context.Context, upd wire.Update) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquiring handler slot: %w", err)
	}
	defer d.sem.Release(1)

	consumed, err := d.dispatchTemporary(upd)
	if err != nil {
		logging.Errorf("dropping update #%d: %s", upd.ID, err)

		return nil //nolint:nilerr // Dropping the update is the documented recovery, not a pipeline failure.
	}

	if consumed {
		return nil
	}

	if err := d.dispatchPermanent(upd); err != nil {
		logging.Errorf("dropping update #%d: %s", upd.ID, err)
	}

	return nil
}

// dispatchTemporary returns consumed=true if some temporary handler ran a step for this update
// (whether it stayed alive by returning Unhandled or was retired), meaning permanent dispatch
// must be skipped entirely.
func (d *Dispatcher) dispatchTemporary(upd wire.Update) (bool, error) {
	for _, th := range d.registry.temporarySnapshot(upd.Category) {
		if th.expired(time.Now()) {
			d.registry.removeTemporary(upd.Category, th)

			continue
		}

		sharedOK, err := matches(th.SharedFilters, upd.Payload)
		if err != nil {
			return false, &apierr.FilterEvaluationError{Cause: err}
		}

		if !sharedOK {
			continue
		}

		step, found, err := th.firstMatchingStep(upd.Payload)
		if err != nil {
			return false, &apierr.FilterEvaluationError{Cause: err}
		}

		if !found {
			logging.Errorf("temporary handler for %q matched shared filters but no step matched, skipping it",
				upd.Category)

			continue
		}

		result := safeInvoke(step.Handler, upd.Payload, th.Context)

		switch {
		case IsUnhandled(result):
			return true, nil
		case isRestartRequested(result):
			d.registry.RequestRestart()
			d.registry.removeTemporary(upd.Category, th)

			return true, nil
		default:
			d.registry.removeTemporary(upd.Category, th)

			return true, nil
		}
	}

	return false, nil
}

func (d *Dispatcher) dispatchPermanent(upd wire.Update) error {
	for _, reg := range d.registry.permanentSnapshot(upd.Category) {
		isolated, ok := wire.DeepCopy(upd.Payload).(map[string]any)
		if !ok {
			isolated = upd.Payload
		}

		matched, err := matches(reg.Filters, isolated)
		if err != nil {
			return &apierr.FilterEvaluationError{Cause: err}
		}

		if !matched {
			continue
		}

		result := safeInvoke(reg.Handler, isolated, nil)

		switch {
		case IsUnhandled(result):
			continue
		case isRestartRequested(result):
			d.registry.RequestRestart()

			return nil
		default:
			return nil
		}
	}

	logging.Errorf("no handler accepted update #%d (category %q)", upd.ID, upd.Category)

	return nil
}

// safeInvoke recovers a panicking handler and reports it as the handled-but-failed case: the
// panic is logged and the update treated as consumed (not Unhandled), matching "handler
// exceptions are logged with stack; the update is dropped".
func safeInvoke(h Invocable, payload Payload, ctx any) (result any) {
	defer func() {
		if r := recover(); r != nil {
			err := &apierr.EventHandlerError{Cause: util.RecoveredPanicError{Panic: r}}
			logging.Errorf("recovered from handler panic: %s", err)

			result = nil
		}
	}()

	return h.invoke(payload, ctx)
}
