// Package callback provides tokenized subscriber registries, single-slot
// callbacks, one-shot completions and the ordered queue used to deliver them.
package callback

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Token identifies one registered subscriber. The upper 24 bits name the
// issuing registry, the lower 40 bits a sequence number, so a token is only
// meaningful to the registry that returned it. Zero is never issued.
type Token uint64

const seqBits = 40

var registryIDs atomic.Uint64

func nextRegistryID() uint64 {
	return registryIDs.Add(1) & (1<<(64-seqBits) - 1)
}

type entry[T any] struct {
	token Token
	fn    T
}

// Registry holds the subscribers of one callback category, in registration order.
type Registry[T any] struct {
	mu      sync.Mutex
	id      uint64
	seq     uint64
	entries []entry[T]
}

// NewRegistry returns an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{id: nextRegistryID()}
}

// Add registers fn and returns its token.
func (r *Registry[T]) Add(fn T) Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	tok := Token(r.id<<seqBits | r.seq&(1<<seqBits-1))
	r.entries = append(r.entries, entry[T]{token: tok, fn: fn})
	return tok
}

// Remove unregisters the subscriber of tok. Unknown or stale tokens are ignored.
func (r *Registry[T]) Remove(tok Token) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.token == tok {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Clear unregisters every subscriber.
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
}

// Register applies the registration triad:
//   - non-nil fn: add it and store the new token in tok when tok is not nil
//   - nil fn, non-zero *tok: remove that subscriber
//   - nil fn, nil or zero tok: remove all subscribers
func (r *Registry[T]) Register(fn T, tok *Token) {
	if !isNil(fn) {
		t := r.Add(fn)
		if tok != nil {
			*tok = t
		}
		return
	}
	if tok != nil && *tok != 0 {
		r.Remove(*tok)
		return
	}
	r.Clear()
}

// Snapshot returns the subscribers in registration order.
// Dispatch iterates the copy so no lock is held while subscribers run.
func (r *Registry[T]) Snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.fn
	}
	return out
}

// Len returns the number of subscribers.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func isNil[T any](v T) bool {
	rv := reflect.ValueOf(&v).Elem()
	switch rv.Kind() {
	case reflect.Func, reflect.Interface, reflect.Pointer, reflect.Map, reflect.Chan, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

// Slot holds the single subscriber of a single-slot category.
// Setting replaces the previous subscriber.
type Slot[T any] struct {
	mu sync.Mutex
	fn T
	ok bool
}

// Set replaces the subscriber. A nil value clears the slot.
func (s *Slot[T]) Set(fn T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn = fn
	s.ok = !isNil(fn)
}

// Get returns the subscriber and whether one is set.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fn, s.ok
}

// OneShot hands out a completion callback at most once.
type OneShot[F any] struct {
	mu    sync.Mutex
	fn    F
	taken bool
}

// NewOneShot wraps fn. A nil fn is treated as already taken.
func NewOneShot[F any](fn F) *OneShot[F] {
	return &OneShot[F]{fn: fn, taken: isNil(fn)}
}

// Take returns the callback the first time it is called; later calls return false.
func (o *OneShot[F]) Take() (F, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var zero F
	if o.taken {
		return zero, false
	}
	o.taken = true
	fn := o.fn
	o.fn = zero
	return fn, true
}

// Done reports whether the callback was already taken.
func (o *OneShot[F]) Done() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.taken
}
