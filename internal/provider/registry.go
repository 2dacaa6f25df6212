package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/iudanet/clipsync/internal/syncerr"
)

// Factory constructs a provider of one kind.
type Factory func(env Env) (Provider, error)

// Registry maps provider kinds to their factories.
type Registry struct {
	factories map[Kind]Factory
	mu        sync.RWMutex
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Kind]Factory)}
}

// Register adds a factory. A factory with the same kind is replaced.
func (r *Registry) Register(kind Kind, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[kind] = factory
	return nil
}

// New builds the provider registered for kind. Unknown and unregistered
// kinds fail with a ConfigurationError.
func (r *Registry) New(kind Kind, env Env) (Provider, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}

	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, syncerr.New(syncerr.ConfigurationError, "provider",
			fmt.Errorf("%w: %q is not registered", syncerr.ErrUnknownProvider, kind))
	}

	p, err := factory(env)
	if err != nil {
		return nil, syncerr.New(syncerr.ConfigurationError, "provider "+string(kind), err)
	}
	return p, nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		result = append(result, k)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
