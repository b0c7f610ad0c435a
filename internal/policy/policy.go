// Package policy adapts cache implementations to a common
// get-or-insert interface for simulation and benchmarking.
package policy

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/dgryski/go-tinylfu"
	"github.com/hashicorp/golang-lru/arc/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/djdv/go-setassoc"
)

type (
	// Policy is a cache driven one access at a time.
	Policy interface {
		Name() string
		// Access looks up key, inserting it on a miss.
		// It reports whether the lookup hit.
		Access(key uint32) (hit bool)
	}
	constructor = func(capacity int) (Policy, error)

	// store is the Find/Add surface shared by both setassoc caches.
	store interface {
		Find(uint32) *uint32
		Add(uint32, uint32)
	}
	setassocPolicy struct {
		store
		name string
	}
	lruPolicy struct {
		*lru.Cache[uint32, uint32]
	}
	arcPolicy struct {
		*arc.ARCCache[uint32, uint32]
	}
	tinyLFUPolicy struct {
		*tinylfu.T
	}
)

// Policy names accepted by [New].
const (
	Direct  = "direct"
	FourWay = "4way"
	LRU     = "lru"
	ARC     = "arc"
	TinyLFU = "tinylfu"
)

type constError string

func (errStr constError) Error() string { return string(errStr) }

// ErrUnknown is returned from [New] for names not listed by [Names].
const ErrUnknown = constError("unknown policy")

var constructors = map[string]constructor{
	Direct: func(capacity int) (Policy, error) {
		cache, err := setassoc.NewDirectMapped[uint32](capacity)
		if err != nil {
			return nil, err
		}
		return setassocPolicy{store: cache, name: Direct}, nil
	},
	FourWay: func(capacity int) (Policy, error) {
		cache, err := setassoc.NewSetAssociative[uint32](capacity)
		if err != nil {
			return nil, err
		}
		return setassocPolicy{store: cache, name: FourWay}, nil
	},
	LRU: func(capacity int) (Policy, error) {
		cache, err := lru.New[uint32, uint32](capacity)
		if err != nil {
			return nil, err
		}
		return lruPolicy{Cache: cache}, nil
	},
	ARC: func(capacity int) (Policy, error) {
		cache, err := arc.NewARC[uint32, uint32](capacity)
		if err != nil {
			return nil, err
		}
		return arcPolicy{ARCCache: cache}, nil
	},
	TinyLFU: func(capacity int) (Policy, error) {
		if capacity < 1 {
			return nil, fmt.Errorf("tinylfu: capacity must be positive, got %d", capacity)
		}
		const samplesPerEntry = 10
		return tinyLFUPolicy{
			T: tinylfu.New(capacity, capacity*samplesPerEntry),
		}, nil
	},
}

// Names returns the accepted policy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New constructs the named policy with the given capacity.
func New(name string, capacity int) (Policy, error) {
	construct, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknown, name, Names())
	}
	policy, err := construct(capacity)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return policy, nil
}

func (sp setassocPolicy) Name() string { return sp.name }

func (sp setassocPolicy) Access(key uint32) bool {
	if sp.Find(key) != nil {
		return true
	}
	sp.Add(key, key)
	return false
}

func (lruPolicy) Name() string { return LRU }

func (lp lruPolicy) Access(key uint32) bool {
	if _, ok := lp.Get(key); ok {
		return true
	}
	lp.Add(key, key)
	return false
}

func (arcPolicy) Name() string { return ARC }

func (ap arcPolicy) Access(key uint32) bool {
	if _, ok := ap.Get(key); ok {
		return true
	}
	ap.Add(key, key)
	return false
}

func (tinyLFUPolicy) Name() string { return TinyLFU }

// Access keys tinylfu by the key's decimal string.
func (tp tinyLFUPolicy) Access(key uint32) bool {
	name := strconv.FormatUint(uint64(key), 10)
	if _, ok := tp.Get(name); ok {
		return true
	}
	tp.Add(name, key)
	return false
}
