package evaluator

import (
	"fmt"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]KindStrategy)

	builtinsOnce sync.Once
)

// RegisterBuiltins registers the strategies for every catalogue kind.
func RegisterBuiltins() {
	builtinsOnce.Do(func() {
		MustRegister(NewTextStrategy())
		MustRegister(NewEmailStrategy())
		MustRegister(NewPhoneStrategy())
		MustRegister(NewSelectStrategy())
		MustRegister(NewMultiStrategy())
	})
}

// MustRegister adds a strategy to the registry, panicking when a duplicate kind is registered.
func MustRegister(strategy KindStrategy) {
	if strategy == nil {
		panic("cannot register nil strategy")
	}

	key := normalize(strategy.Name())
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[key]; exists {
		panic(fmt.Sprintf("kind strategy '%s' already registered", strategy.Name()))
	}

	registry[key] = strategy
}

// Get returns the strategy for the given kind, or nil when absent.
func Get(name string) KindStrategy {
	key := normalize(name)
	registryMu.RLock()
	defer registryMu.RUnlock()

	return registry[key]
}

func normalize(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

// resetRegistryForTests wipes registration state. Only used inside unit tests.
func resetRegistryForTests() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]KindStrategy)
	builtinsOnce = sync.Once{}
}
