package breaker

import (
	"sort"
	"sync"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry owns one breaker per dependency name for the lifetime of the
// process. It is passed explicitly to components that need breakers so tests
// can construct isolated registries instead of sharing package-level state.
type Registry struct {
	log     logr.Logger
	metrics *metrics

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewRegistry creates an empty registry. reg may be nil when metrics are not
// wanted (tests).
func NewRegistry(log logr.Logger, reg prometheus.Registerer) *Registry {
	r := &Registry{
		log:      log,
		breakers: make(map[string]*Breaker),
	}
	if reg != nil {
		r.metrics = newMetrics(reg)
	}
	return r
}

// GetOrCreate returns the breaker for cfg.Name, creating it on first use.
// Later calls ignore cfg and return the existing instance, so all callers
// referencing the same dependency share failure accounting.
func (r *Registry) GetOrCreate(cfg Config) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[cfg.Name]; ok {
		return b
	}
	b := New(cfg, r.log)
	b.metrics = r.metrics
	b.observeState(StateClosed)
	r.breakers[cfg.Name] = b
	return b
}

// Get returns the breaker for name, or nil if none was created.
func (r *Registry) Get(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.breakers[name]
}

// Snapshots returns the state of all breakers, sorted by dependency name.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.Lock()
	breakers := make([]*Breaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	r.mu.Unlock()

	out := make([]Snapshot, 0, len(breakers))
	for _, b := range breakers {
		out = append(out, b.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
