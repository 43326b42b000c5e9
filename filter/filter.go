// Package filter provides pure predicate functions over update payloads, composable with the
// boolean combinators in composition.go and built from the generators in generators.go.
package filter

import "github.com/corvidlabs/tbot/event"

// Filter is an alias to the dispatch engine's predicate type, so filters built here plug directly
// into event.Registration.Filters and event.TemporaryHandler without conversion.
type Filter = event.Filter

// Tolerant wraps f so that a missing-key failure (f returning a non-nil error) becomes a plain
// false instead of propagating as FilterEvaluation. Useful for schema-tolerant predicates that
// would otherwise drop the update whenever an optional field is absent.
func Tolerant(f Filter) Filter {
	return func(payload event.Payload) (bool, error) {
		ok, err := f(payload)
		if err != nil {
			return false, nil
		}

		return ok, nil
	}
}
