package event

import (
	"context"
	"testing"
	"time"

	"github.com/corvidlabs/tbot/internal/util/option"
	"github.com/corvidlabs/tbot/internal/wire"
)

func update(category string, payload Payload) wire.Update {
	return wire.Update{ID: 1, Category: category, Payload: payload}
}

func TestDispatchPermanentHandlerRuns(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r, 8)

	ran := false
	if err := r.On("message", Handler1(func(Payload) any {
		ran = true

		return "handled"
	})); err != nil {
		t.Fatalf("On failed: %v", err)
	}

	if err := d.Dispatch(context.Background(), update("message", Payload{"text": "hi"})); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if !ran {
		t.Fatal("expected permanent handler to run")
	}
}

func TestDispatchUnhandledFallsThroughToNextHandler(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r, 8)

	firstRan, secondRan := false, false

	if err := r.On("message", Handler1(func(Payload) any { firstRan = true; return Unhandled })); err != nil {
		t.Fatal(err)
	}

	if err := r.On("message", Handler1(func(Payload) any { secondRan = true; return "handled" })); err != nil {
		t.Fatal(err)
	}

	if err := d.Dispatch(context.Background(), update("message", Payload{})); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if !firstRan || !secondRan {
		t.Fatalf("expected both handlers to run, got first=%v second=%v", firstRan, secondRan)
	}
}

func TestDispatchTemporaryHandlerConsumesUpdate(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r, 8)

	permanentRan := false
	if err := r.On("message", Handler1(func(Payload) any { permanentRan = true; return nil })); err != nil {
		t.Fatal(err)
	}

	temporaryRan := false
	r.WaitFor(NewTemporaryHandler("message", "ctx-value").
		WithStep(Handler2(func(_ Payload, ctx any) any {
			temporaryRan = true

			if ctx != "ctx-value" {
				t.Fatalf("expected context to be passed to temporary step, got %v", ctx)
			}

			return "done"
		})))

	if err := d.Dispatch(context.Background(), update("message", Payload{})); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if !temporaryRan {
		t.Fatal("expected temporary handler to run")
	}

	if permanentRan {
		t.Fatal("permanent handler should not run once a temporary handler consumes the update")
	}

	if len(r.temporarySnapshot("message")) != 0 {
		t.Fatal("temporary handler should be retired after a non-Unhandled return")
	}
}

func TestDispatchExpiredTemporaryHandlerIsSkipped(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r, 8)

	ran := false
	th := NewTemporaryHandler("message", nil).WithStep(Handler1(func(Payload) any { ran = true; return "done" }))
	th.ExpiresAt = option.Some(time.Now().Add(-time.Minute))

	r.WaitFor(th)

	if err := d.Dispatch(context.Background(), update("message", Payload{})); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if ran {
		t.Fatal("expired temporary handler should never be invoked")
	}

	if len(r.temporarySnapshot("message")) != 0 {
		t.Fatal("expired temporary handler should be removed")
	}
}

func TestDispatchPanicInHandlerIsRecovered(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r, 8)

	if err := r.On("message", Handler1(func(Payload) any { panic("boom") })); err != nil {
		t.Fatal(err)
	}

	if err := d.Dispatch(context.Background(), update("message", Payload{})); err != nil {
		t.Fatalf("Dispatch should recover from handler panics, got error: %v", err)
	}
}

func TestDispatchRestartRequestedSetsFlag(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r, 8)

	if err := r.On("message", Handler1(func(Payload) any { return RestartRequested })); err != nil {
		t.Fatal(err)
	}

	if err := d.Dispatch(context.Background(), update("message", Payload{})); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if !r.RestartRequested() {
		t.Fatal("expected restart flag to be set")
	}
}
