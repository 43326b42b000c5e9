package filter

import (
	"errors"
	"testing"

	"github.com/corvidlabs/tbot/event"
)

func always(v bool) Filter {
	return func(event.Payload) (bool, error) { return v, nil }
}

func failing() Filter {
	return func(event.Payload) (bool, error) { return false, errors.New("boom") }
}

func TestNot(t *testing.T) {
	ok, err := Not(always(true))(nil)
	if err != nil || ok {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}
}

func TestAnyShortCircuits(t *testing.T) {
	calledSecond := false
	second := func(event.Payload) (bool, error) { calledSecond = true; return true, nil }

	ok, err := Any(always(true), second)(nil)
	if err != nil || !ok {
		t.Fatalf("expected (true, nil), got (%v, %v)", ok, err)
	}

	if calledSecond {
		t.Fatal("Any should short-circuit after the first truthy filter")
	}
}

func TestAllShortCircuits(t *testing.T) {
	calledSecond := false
	second := func(event.Payload) (bool, error) { calledSecond = true; return true, nil }

	ok, err := All(always(false), second)(nil)
	if err != nil || ok {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}

	if calledSecond {
		t.Fatal("All should short-circuit after the first falsy filter")
	}
}

func TestNone(t *testing.T) {
	ok, err := None(always(false), always(false))(nil)
	if err != nil || !ok {
		t.Fatalf("expected (true, nil), got (%v, %v)", ok, err)
	}

	ok, err = None(always(false), always(true))(nil)
	if err != nil || ok {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}
}

func TestXorExactlyOne(t *testing.T) {
	ok, err := Xor(always(true), always(false))(nil)
	if err != nil || !ok {
		t.Fatalf("expected (true, nil), got (%v, %v)", ok, err)
	}

	ok, err = Xor(always(true), always(true))(nil)
	if err != nil || ok {
		t.Fatalf("expected (false, nil) for two truthy filters, got (%v, %v)", ok, err)
	}
}

func TestXorPropagatesError(t *testing.T) {
	_, err := Xor(always(true), failing())(nil)
	if err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestTolerantSwallowsErrors(t *testing.T) {
	ok, err := Tolerant(failing())(nil)
	if err != nil {
		t.Fatalf("expected Tolerant to swallow the error, got %v", err)
	}

	if ok {
		t.Fatal("expected false on swallowed error")
	}
}
