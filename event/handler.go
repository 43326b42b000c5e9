package event

import "github.com/pkg/errors"

// Payload is the dynamic, schema-less body of a single update category (e.g. the object found
// under update["message"]). The library never defines typed Message/Chat/User models; callers
// navigate the map themselves or via the filter package's key-presence helpers.
type Payload = map[string]any

// Filter is a pure predicate over a Payload. It may also fail outright (a missing key accessed
// the wrong way, a malformed regex target, ...); the caller classifies that failure as
// FilterEvaluation and drops the update rather than panicking the dispatcher.
type Filter func(Payload) (bool, error)

// HandlerFunc1 reacts to an update given only its payload.
type HandlerFunc1 func(Payload) any

// HandlerFunc2 reacts to an update given its payload and a context value: a temporary handler's
// steps receive that TemporaryHandler's Context, and a permanent handler always receives nil.
type HandlerFunc2 func(Payload, any) any

// Invocable is implemented by both handler arities, letting the registry and dispatcher store and
// call either uniformly without reflecting on the callable. This is the discriminated-union
// replacement for the source's introspection of func.__code__.co_argcount.
type Invocable interface {
	invoke(payload Payload, ctx any) any
}

type handler1 struct{ fn HandlerFunc1 }

func (h handler1) invoke(p Payload, _ any) any { return h.fn(p) }

type handler2 struct{ fn HandlerFunc2 }

func (h handler2) invoke(p Payload, ctx any) any { return h.fn(p, ctx) }

// Handler1 wraps a one-argument callback as an Invocable.
func Handler1(fn HandlerFunc1) Invocable { return handler1{fn: fn} }

// Handler2 wraps a two-argument callback (payload, context) as an Invocable.
func Handler2(fn HandlerFunc2) Invocable { return handler2{fn: fn} }

// Registration is a permanent handler record: {category, callable, filters[]} from the data
// model. Registration order is preserved by the Registry that stores these.
type Registration struct {
	Category string
	Handler  Invocable
	Filters  []Filter
}

// matches evaluates Filters in registration order with short-circuit on the first falsy one.
// Missing filters (an empty slice) always match.
func matches(filters []Filter, payload Payload) (bool, error) {
	for _, f := range filters {
		ok, err := f(payload)
		if err != nil {
			return false, errors.Wrap(err, "evaluating filter")
		}

		if !ok {
			return false, nil
		}
	}

	return true, nil
}
