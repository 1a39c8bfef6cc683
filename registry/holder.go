package registry

import (
	"sync"
	"sync/atomic"
)

// Holder publishes the current registry of a suffix list file.
//
// Readers call [Holder.Load] once per lookup and use the returned registry
// for the whole lookup. Replaced registries are never unloaded, since
// readers may still hold them.
type Holder struct {
	config  Config
	current atomic.Pointer[Registry]
	mu      sync.Mutex
}

// NewHolder returns a holder for the configured list.
// Nothing is loaded until [Holder.Reload] is called.
func NewHolder(config Config) *Holder {
	return &Holder{config: config}
}

// Config returns the holder's configuration.
func (h *Holder) Config() Config {
	return h.config
}

// Load returns the current registry, or nil if nothing has been loaded.
func (h *Holder) Load() *Registry {
	return h.current.Load()
}

// Store publishes r as the current registry.
func (h *Holder) Store(r *Registry) {
	h.current.Store(r)
}

// Reload reads the list file again and publishes the result.
//
// If the new list has the same fingerprint as the current one,
// the current registry is kept and changed is false.
// On error, the current registry is kept.
func (h *Holder) Reload() (r *Registry, changed bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, err = h.config.Registry()
	if err != nil {
		return h.current.Load(), false, err
	}

	if old := h.current.Load(); old != nil && old.fingerprint == r.fingerprint {
		return old, false, nil
	}

	h.current.Store(r)
	return r, true, nil
}
