// Package event implements a type-checked synchronous event registry:
// callers declare an event type once, register hooks against it, and
// dispatch events by value. Every hook registered against an event runs
// in registration order; a hook's error is logged and the dispatch
// continues to the next hook rather than aborting.
//
// Hooks are type-erased behind reflect.TypeOf so one Registry can serve
// many different event types safely, while still giving each hook its
// concrete event type back at dispatch time.
package event

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/nels-koby/glint/internal/log"
)

// Hook runs in response to one dispatched event. Returning an error does
// not stop later hooks from running against the same event; the error is
// only logged.
type Hook[E any] interface {
	Run(event *E) error
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc[E any] func(event *E) error

// Run implements Hook.
func (f HookFunc[E]) Run(event *E) error { return f(event) }

// erasedHook stores a hook against its declared event type, resolving
// the concrete type at dispatch time with a type assertion instead of a
// raw-pointer vtable call.
type erasedHook struct {
	eventType reflect.Type
	call      func(event any) error
}

// registration records the concrete type an event ID was declared with,
// so a later register_hook/dispatch against a mismatched type is caught
// immediately rather than silently doing nothing.
type registration struct {
	eventType reflect.Type
	hooks     []erasedHook
}

// Registry is a type-checked map from event ID to its declared type and
// the ordered hooks registered against it. Create one with NewRegistry
// (the zero value has no map and is not usable); Default returns the
// shared process-wide instance most callers want.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*registration
}

// NewRegistry returns an empty, independently-lockable registry. Most
// programs should use Default instead; NewRegistry exists for tests that
// need isolation from global state.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*registration)}
}

var defaultRegistry = NewRegistry()

// Default returns the shared process-wide Registry.
func Default() *Registry { return defaultRegistry }

// RegisterEvent declares event ID id with type E. Calling it again with
// the same id and the same type E is a harmless no-op (logged at debug
// level); calling it again with a different type for the same id is a
// programmer error and panics — an event ID is permanently bound to one
// type for the process lifetime.
func RegisterEvent[E any](r *Registry, id string) {
	t := reflect.TypeOf((*E)(nil)).Elem()

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byID[id]; ok {
		if existing.eventType != t {
			panic(fmt.Sprintf("event: id %q already registered with type %s, cannot re-register as %s", id, existing.eventType, t))
		}
		log.Debug(log.CatEvent, "duplicate event registration ignored", "id", id)
		return
	}
	r.byID[id] = &registration{eventType: t}
}

// RegisterHook appends hook to the ordered list of hooks run whenever
// event ID id is dispatched. Panics if id was never declared with
// RegisterEvent, or was declared with a different type than E.
func RegisterHook[E any](r *Registry, id string, hook Hook[E]) {
	t := reflect.TypeOf((*E)(nil)).Elem()

	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.byID[id]
	if !ok {
		panic(fmt.Sprintf("event: hook registered for unknown event id %q", id))
	}
	if reg.eventType != t {
		panic(fmt.Sprintf("event: hook type %s does not match event id %q's declared type %s", t, id, reg.eventType))
	}
	reg.hooks = append(reg.hooks, erasedHook{
		eventType: t,
		call: func(event any) error {
			return hook.Run(event.(*E))
		},
	})
}

// RegisterDynamicHook is like RegisterHook but accepts a plain closure
// with no event payload, for hooks that only care that something of this
// type happened. Returns an error (rather than panicking) if id is
// unknown: dynamic hooks are typically registered from less trusted or
// more dynamic call sites (e.g. scripting), so a recoverable error fits
// better than a panic.
func RegisterDynamicHook(r *Registry, id string, fn func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("event: dynamic hook registered for unknown event id %q", id)
	}
	reg.hooks = append(reg.hooks, erasedHook{
		eventType: reg.eventType,
		call: func(any) error {
			fn()
			return nil
		},
	})
	return nil
}

// Dispatch runs every hook registered for id against event, in
// registration order. A hook's error is logged and does not stop
// subsequent hooks from running. Panics if id was never declared with
// RegisterEvent, or was declared with a different type than E.
func Dispatch[E any](r *Registry, id string, event *E) {
	t := reflect.TypeOf((*E)(nil)).Elem()

	r.mu.RLock()
	reg, ok := r.byID[id]
	if !ok {
		r.mu.RUnlock()
		panic(fmt.Sprintf("event: dispatch of unknown event id %q", id))
	}
	if reg.eventType != t {
		r.mu.RUnlock()
		panic(fmt.Sprintf("event: dispatch type %s does not match event id %q's declared type %s", t, id, reg.eventType))
	}
	hooks := make([]erasedHook, len(reg.hooks))
	copy(hooks, reg.hooks)
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.call(event); err != nil {
			log.ErrorErr(log.CatEvent, fmt.Sprintf("hook failed for event %q", id), err)
		}
	}
}

// HandlerCount returns how many hooks are currently registered for id,
// for tests and diagnostics.
func (r *Registry) HandlerCount(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.byID[id]
	if !ok {
		return 0
	}
	return len(reg.hooks)
}
