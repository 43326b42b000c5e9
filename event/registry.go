package event

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/corvidlabs/tbot/internal/util/logging"
)

// StartupFunc is the zero-argument startup lifecycle handler.
type StartupFunc func()

// ShutdownFunc is the one-argument shutdown lifecycle handler; its argument is the process exit
// code the driver is about to return.
type ShutdownFunc func(exitCode int)

// ErrLifecycleAlreadyRegistered is returned when startup or shutdown is registered twice; both
// lifecycle handlers are singletons.
var ErrLifecycleAlreadyRegistered = errors.New("lifecycle handler already registered")

// ErrRegistryLocked is returned by On once polling has started; the permanent registry is frozen
// at that point and further registration is rejected.
var ErrRegistryLocked = errors.New("permanent handler registry is locked, polling has already started")

// Registry owns every permanent handler record, every temporary handler record, and the two
// lifecycle singletons. The dispatch engine only ever borrows references into it.
type Registry struct {
	mu sync.Mutex

	permanent map[string][]Registration
	temporary map[string][]*TemporaryHandler

	startup  StartupFunc
	shutdown ShutdownFunc

	locked           bool
	restartRequested bool
}

// NewRegistry creates an empty, unlocked registry.
func NewRegistry() *Registry {
	return &Registry{
		permanent: make(map[string][]Registration),
		temporary: make(map[string][]*TemporaryHandler),
	}
}

// On registers a permanent handler for category, matching iff every filter is truthy. Returns
// ErrRegistryLocked if polling has already started.
func (r *Registry) On(category string, handler Invocable, filters ...Filter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locked {
		return ErrRegistryLocked
	}

	existing := r.permanent[category]
	if len(existing) > 0 && len(existing[len(existing)-1].Filters) == 0 {
		logging.Errorf("registering a %s handler after an unfiltered catch-all; "+
			"it will only run if the catch-all returns Unhandled", category)
	}

	r.permanent[category] = append(existing, Registration{
		Category: category,
		Handler:  handler,
		Filters:  filters,
	})

	return nil
}

// OnStartup registers the singleton startup lifecycle handler.
func (r *Registry) OnStartup(fn StartupFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.startup != nil {
		return ErrLifecycleAlreadyRegistered
	}

	r.startup = fn

	return nil
}

// OnShutdown registers the singleton shutdown lifecycle handler.
func (r *Registry) OnShutdown(fn ShutdownFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.shutdown != nil {
		return ErrLifecycleAlreadyRegistered
	}

	r.shutdown = fn

	return nil
}

// WaitFor registers a temporary, one-shot handler. See TemporaryHandler for field semantics.
// Unlike On, this is legal at any point in the bot's lifetime, including from inside a handler.
func (r *Registry) WaitFor(th *TemporaryHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.temporary[th.Category] = append(r.temporary[th.Category], th)
}

// Lock freezes the permanent registry; called by the polling driver before it starts fetching
// updates. Further On calls fail with ErrRegistryLocked; OnStartup and OnShutdown do not check
// the lock.
func (r *Registry) Lock() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.locked = true
}

// AllowedUpdates is the union of category keys present in either the permanent or the temporary
// registry, in no particular order; it becomes the allowed_updates parameter of getUpdates.
func (r *Registry) AllowedUpdates() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{})

	for category, handlers := range r.permanent {
		if len(handlers) > 0 {
			seen[category] = struct{}{}
		}
	}

	for category, handlers := range r.temporary {
		if len(handlers) > 0 {
			seen[category] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for category := range seen {
		out = append(out, category)
	}

	return out
}

// RequestRestart sets the restart flag observed by the polling driver at the top of its next
// iteration. It is the explicit-flow replacement for raising RestartBot as an exception.
func (r *Registry) RequestRestart() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.restartRequested = true
}

// RestartRequested reports whether a handler has asked the driver to restart.
func (r *Registry) RestartRequested() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.restartRequested
}

func (r *Registry) permanentSnapshot(category string) []Registration {
	r.mu.Lock()
	defer r.mu.Unlock()

	src := r.permanent[category]
	snapshot := make([]Registration, len(src))
	copy(snapshot, src)

	return snapshot
}

func (r *Registry) temporarySnapshot(category string) []*TemporaryHandler {
	r.mu.Lock()
	defer r.mu.Unlock()

	src := r.temporary[category]
	snapshot := make([]*TemporaryHandler, len(src))
	copy(snapshot, src)

	return snapshot
}

// removeTemporary drops handler from the category's list by identity, if still present (it may
// already have been removed by a concurrent dispatch of the same category).
func (r *Registry) removeTemporary(category string, handler *TemporaryHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.temporary[category]
	for i, h := range list {
		if h == handler {
			r.temporary[category] = append(list[:i], list[i+1:]...)

			return
		}
	}
}

// RunStartup invokes the registered startup lifecycle handler, if any.
func (r *Registry) RunStartup() {
	r.mu.Lock()
	fn := r.startup
	r.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// RunShutdown invokes the registered shutdown lifecycle handler, if any, passing the exit code
// the driver is about to return.
func (r *Registry) RunShutdown(code int) {
	r.mu.Lock()
	fn := r.shutdown
	r.mu.Unlock()

	if fn != nil {
		fn(code)
	}
}
