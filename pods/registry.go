package pods

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Pod{}
)

// Register makes p available under p.Name(), replacing any earlier pod.
func Register(p Pod) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[p.Name()] = p
}

func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func Lookup(name string) (Pod, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[name]
	return p, ok
}

// Run executes the registered pod called name.
func Run(x *ExecContext, name string, in any) (any, error) {
	p, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown pod: %s", name)
	}
	return p.Run(x, in)
}

func init() {
	Register(ReducePod{})
	Register(MeanPod{})
}
