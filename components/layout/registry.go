package layout

import (
	"fmt"
	"sort"
	"sync"
)

// Descriptor describes a widget type known to the dashboard. Static widgets
// never poll; LiveKey names the push-channel topic that covers the widget,
// empty when none does.
type Descriptor struct {
	ID      string `json:"id" yaml:"id"`
	Label   string `json:"label" yaml:"label"`
	Icon    string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Static  bool   `json:"static,omitempty" yaml:"static,omitempty"`
	LiveKey string `json:"live_key,omitempty" yaml:"live_key,omitempty"`
}

// RegistryHook lets packages register widget descriptors during init().
type RegistryHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []RegistryHook
)

// RegisterHook registers a hook executed against new registries.
func RegisterHook(h RegistryHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry holds the widget descriptors the layout engine may reference.
// It is populated at startup from built-in defaults, manifests, and hooks,
// and treated as immutable afterwards.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]Descriptor
}

// NewRegistry builds a registry seeded with the built-in widgets and applies
// global hooks.
func NewRegistry() *Registry {
	reg := &Registry{descriptors: map[string]Descriptor{}}
	for _, d := range DefaultDescriptors() {
		_ = reg.Register(d)
	}
	_ = reg.ApplyHooks()
	return reg
}

// NewEmptyRegistry builds a registry without the built-in widgets.
func NewEmptyRegistry() *Registry {
	return &Registry{descriptors: map[string]Descriptor{}}
}

// ApplyHooks executes registered global hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// Register stores a widget descriptor.
func (r *Registry) Register(d Descriptor) error {
	if d.ID == "" {
		return fmt.Errorf("layout: widget descriptor id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors[d.ID] = d
	return nil
}

// Descriptor fetches a widget descriptor by id.
func (r *Registry) Descriptor(id string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[id]
	return d, ok
}

// Has reports whether id names a registered widget.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.descriptors[id]
	return ok
}

// Descriptors returns all registered descriptors sorted by id.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
