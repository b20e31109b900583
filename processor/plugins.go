package processor

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryLock      sync.Mutex
	registeredPlugins = map[string]Processor{}
	registrationOrder []string
)

// RegisterProcessor registers the given annotation processor under the given
// name. It panics if the name is already taken.
func RegisterProcessor(name string, p Processor) {
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, ok := registeredPlugins[name]; ok {
		panic(fmt.Sprintf("processor %q is already registered", name))
	}
	registeredPlugins[name] = p
	registrationOrder = append(registrationOrder, name)
}

// AllRegisteredProcessors returns the list of all registered processors, in
// the order they were registered.
func AllRegisteredProcessors() []Processor {
	registryLock.Lock()
	defer registryLock.Unlock()
	procs := make([]Processor, len(registrationOrder))
	for i, name := range registrationOrder {
		procs[i] = registeredPlugins[name]
	}
	return procs
}

// RegisteredProcessorNames returns the sorted names of all registered
// processors.
func RegisteredProcessorNames() []string {
	registryLock.Lock()
	defer registryLock.Unlock()
	names := make([]string, len(registrationOrder))
	copy(names, registrationOrder)
	sort.Strings(names)
	return names
}

// LookupProcessors returns the processors registered under the given names,
// in registration order. An empty list of names selects all of them.
func LookupProcessors(names ...string) ([]Processor, error) {
	if len(names) == 0 {
		return AllRegisteredProcessors(), nil
	}
	registryLock.Lock()
	defer registryLock.Unlock()
	want := map[string]bool{}
	for _, name := range names {
		if _, ok := registeredPlugins[name]; !ok {
			return nil, fmt.Errorf("unknown processor %q", name)
		}
		want[name] = true
	}
	var procs []Processor
	for _, name := range registrationOrder {
		if want[name] {
			procs = append(procs, registeredPlugins[name])
		}
	}
	return procs, nil
}
