package guard

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrDenied = errors.New("access denied: not authenticated")
	ErrStale  = errors.New("stale load result discarded")
)

type State int

const (
	StateEntering State = iota
	StateDenied
	StateRedirected
	StateAllowed
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEntering:
		return "entering"
	case StateDenied:
		return "denied"
	case StateRedirected:
		return "redirected"
	case StateAllowed:
		return "allowed"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition follows s within one Enter.
func (s State) Terminal() bool {
	return s == StateRedirected || s == StateLoaded || s == StateFailed
}

// View is the state of one protected screen. Each Enter starts a new
// generation; a load that completes after a newer Enter or an Abandon is
// dropped with ErrStale and does not touch the view.
type View[T any] struct {
	guard *Guard

	mu      sync.Mutex
	gen     uint64
	state   State
	value   T
	err     error
	subs    map[int]func(State)
	nextSub int
}

func NewView[T any](g *Guard) *View[T] {
	return &View[T]{guard: g, subs: make(map[int]func(State))}
}

func (v *View[T]) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Result returns the last loaded value and the load error, if any.
func (v *View[T]) Result() (T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value, v.err
}

// Subscribe registers fn for state transitions. Callbacks run on the
// goroutine that performs the transition, outside the view's lock.
func (v *View[T]) Subscribe(fn func(State)) (unsubscribe func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextSub
	v.nextSub++
	v.subs[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subs, id)
	}
}

// Abandon invalidates any in-flight load, as when the user leaves the
// screen before it finishes.
func (v *View[T]) Abandon() {
	v.mu.Lock()
	v.gen++
	v.mu.Unlock()
}

// Enter checks access and, when allowed, runs load once. On the denied path
// onDenied is called between the Denied and Redirected transitions and
// ErrDenied is returned.
func (v *View[T]) Enter(ctx context.Context, load func(context.Context) (T, error), onDenied func()) (T, error) {
	var zero T

	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.value, v.err = zero, nil
	v.mu.Unlock()
	v.transition(gen, StateEntering)

	allowed := v.guard.Check(func() {
		v.transition(gen, StateDenied)
		if onDenied != nil {
			onDenied()
		}
		v.transition(gen, StateRedirected)
	})
	if !allowed {
		return zero, ErrDenied
	}

	v.transition(gen, StateAllowed)
	v.transition(gen, StateLoading)

	value, err := load(ctx)

	v.mu.Lock()
	if v.gen != gen {
		v.mu.Unlock()
		return zero, ErrStale
	}
	next := StateLoaded
	if err != nil {
		next = StateFailed
		v.err = err
	} else {
		v.value = value
	}
	v.state = next
	subs := v.snapshot()
	v.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return value, err
}

func (v *View[T]) transition(gen uint64, s State) {
	v.mu.Lock()
	if v.gen != gen {
		v.mu.Unlock()
		return
	}
	v.state = s
	subs := v.snapshot()
	v.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

func (v *View[T]) snapshot() []func(State) {
	subs := make([]func(State), 0, len(v.subs))
	for _, fn := range v.subs {
		subs = append(subs, fn)
	}
	return subs
}
