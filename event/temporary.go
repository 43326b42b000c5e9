package event

import (
	"time"

	"github.com/corvidlabs/tbot/internal/util/option"
)

// Step is one stage of a TemporaryHandler: {sub_filters[], callable} in the data model.
type Step struct {
	Filters []Filter
	Handler Invocable
}

// TemporaryHandler is a one-shot, multi-step handler used to implement short stateful
// conversations. It is removed from its Registry's temporary table the first time a step's
// callable returns anything other than Unhandled, or when a matching update arrives after
// ExpiresAt.
type TemporaryHandler struct {
	Category      string
	SharedFilters []Filter
	Steps         []Step
	Context       any
	ExpiresAt     option.Option[time.Time]
}

// NewTemporaryHandler starts building a temporary handler for category, bound to context (passed
// as the second argument to any two-argument step). Use the With* methods to add shared filters,
// steps, and an expiry; this fluent builder takes the place of a decorator-based registration call.
func NewTemporaryHandler(category string, context any) *TemporaryHandler {
	return &TemporaryHandler{
		Category: category,
		Context:  context,
	}
}

// WithSharedFilters sets the filters evaluated once before any step is considered; a falsy shared
// filter causes the dispatcher to skip this handler entirely for the update.
func (t *TemporaryHandler) WithSharedFilters(filters ...Filter) *TemporaryHandler {
	t.SharedFilters = filters

	return t
}

// WithStep appends a step: its handler runs if filters all match and no earlier step matched
// first.
func (t *TemporaryHandler) WithStep(handler Invocable, filters ...Filter) *TemporaryHandler {
	t.Steps = append(t.Steps, Step{Filters: filters, Handler: handler})

	return t
}

// WithExpiry sets a relative expiry measured from now. An expired handler is removed without
// invocation the next time it is considered for dispatch.
func (t *TemporaryHandler) WithExpiry(ttl time.Duration) *TemporaryHandler {
	t.ExpiresAt = option.Some(time.Now().Add(ttl))

	return t
}

func (t *TemporaryHandler) expired(now time.Time) bool {
	at, isSome := t.ExpiresAt.Unwrap()

	return isSome && !at.After(now)
}

// firstMatchingStep returns the first step whose filters all match payload, or false if none did.
func (t *TemporaryHandler) firstMatchingStep(payload Payload) (Step, bool, error) {
	for _, step := range t.Steps {
		ok, err := matches(step.Filters, payload)
		if err != nil {
			return Step{}, false, err
		}

		if ok {
			return step, true, nil
		}
	}

	return Step{}, false, nil
}
