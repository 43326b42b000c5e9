package tbot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/corvidlabs/tbot/internal/wire"
)

func TestStartIdleReturnsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(wire.APIResponse{Ok: true})
	}))
	defer srv.Close()

	b, err := NewBot("123456789:AAAA-bbbb-cccc-dddd-eeee", WithBaseAPIURL(srv.URL))
	if err != nil {
		t.Fatalf("NewBot failed: %v", err)
	}

	shutdownCode := -1
	if err := b.OnShutdown(func(code int) { shutdownCode = code }); err != nil {
		t.Fatalf("OnShutdown failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan int)
	go func() { done <- int(b.StartIdle(ctx)) }()

	select {
	case code := <-done:
		if code != 0 {
			t.Fatalf("expected exit code 0 (UserTerminated), got %d", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("StartIdle did not return after context cancellation")
	}

	if shutdownCode != 0 {
		t.Fatalf("expected shutdown handler to run with code 0, got %d", shutdownCode)
	}
}

func TestGetUpdatesDecodesUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(wire.APIResponse{
			Ok:     true,
			Result: json.RawMessage(`[{"update_id": 10, "message": {"text": "hi"}}]`),
		})
	}))
	defer srv.Close()

	b, err := NewBot("123456789:AAAA-bbbb-cccc-dddd-eeee", WithBaseAPIURL(srv.URL))
	if err != nil {
		t.Fatalf("NewBot failed: %v", err)
	}

	b.pipeline.Open()
	defer b.pipeline.Close()

	updates, err := b.getUpdates(context.Background(), 0, 0, nil)
	if err != nil {
		t.Fatalf("getUpdates failed: %v", err)
	}

	if len(updates) != 1 || updates[0].ID != 10 {
		t.Fatalf("unexpected updates: %+v", updates)
	}
}

func TestDropPendingUpdatesAdvancesOffset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(wire.APIResponse{
			Ok:     true,
			Result: json.RawMessage(`[{"update_id": 5, "message": {}}, {"update_id": 6, "message": {}}]`),
		})
	}))
	defer srv.Close()

	b, err := NewBot("123456789:AAAA-bbbb-cccc-dddd-eeee", WithBaseAPIURL(srv.URL))
	if err != nil {
		t.Fatalf("NewBot failed: %v", err)
	}

	b.pipeline.Open()
	defer b.pipeline.Close()

	b.dropPendingUpdates(context.Background())

	if b.offset != 7 {
		t.Fatalf("expected offset to advance past the last dropped update (7), got %d", b.offset)
	}
}
