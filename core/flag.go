package core

import "sync"

// BoolSource is a read-only view of a boolean state owned elsewhere.
type BoolSource interface {
	Get() bool
}

// Flag is an observable boolean owned by exactly one component. Other
// components read it through BoolSource or subscribe to changes; they
// never mutate it directly.
type Flag struct {
	mu   sync.Mutex
	v    bool
	subs []func(bool)
}

func NewFlag() *Flag {
	return &Flag{}
}

// Set updates the value and notifies subscribers when it changed.
func (f *Flag) Set(v bool) {
	f.mu.Lock()
	if f.v == v {
		f.mu.Unlock()
		return
	}
	f.v = v
	subs := make([]func(bool), len(f.subs))
	copy(subs, f.subs)
	f.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

func (f *Flag) Get() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.v
}

// Subscribe registers a change listener. Listeners run on the goroutine
// that called Set and must not call back into the flag.
func (f *Flag) Subscribe(fn func(bool)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
}
