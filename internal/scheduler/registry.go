package scheduler

import (
	"sort"
	"sync"
)

// kindSpec holds the built-in defaults for one resource manager.
type kindSpec struct {
	submitExec string
	pattern    string
	parseID    func(output string) (string, error)
}

var (
	kinds   = map[Kind]kindSpec{}
	kindsMu sync.RWMutex
)

// registerKind adds a resource manager. Called from the init functions of
// slurm.go, sge.go, pbs.go and bash.go.
func registerKind(k Kind, spec kindSpec) {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	kinds[k] = spec
}

func lookupKind(k Kind) (kindSpec, bool) {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	spec, ok := kinds[k]
	return spec, ok
}

// Kinds returns the registered resource managers sorted by name.
func Kinds() []Kind {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultPattern returns the built-in header pattern for k.
func DefaultPattern(k Kind) (string, bool) {
	spec, ok := lookupKind(k)
	return spec.pattern, ok
}
