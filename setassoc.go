package setassoc

import (
	"iter"

	"github.com/djdv/go-setassoc/internal/order"
)

// SetAssociative groups its slots into sets of [Ways] ways.
// A key maps to exactly one set and may occupy any of its ways;
// when a set is full the least recently used way is replaced.
// Concurrent access must be guarded by the caller.
// Constructed by [NewSetAssociative].
type SetAssociative[Value any] struct {
	// Set s occupies ways[s*Ways : s*Ways+Ways].
	ways   []entry[Value]
	orders []order.Order
	mask   uint32
	count  int
}

// Ways is the associativity of [SetAssociative].
// It is also the minimum size accepted by [NewSetAssociative].
const Ways = order.Ways

// NewSetAssociative creates a [SetAssociative] cache with
// the given total number of slots (size/[Ways] sets).
// Size must be a power of two and at least [Ways].
func NewSetAssociative[Value any](size int) (*SetAssociative[Value], error) {
	if err := checkSize(size, Ways); err != nil {
		return nil, err
	}
	sets := size / Ways
	c := &SetAssociative[Value]{
		ways:   make([]entry[Value], size),
		orders: make([]order.Order, sets),
		mask:   uint32(sets - 1),
	}
	c.resetOrders()
	return c, nil
}

// MustSetAssociative is like [NewSetAssociative] but panics if size is invalid.
func MustSetAssociative[Value any](size int) *SetAssociative[Value] {
	cache, err := NewSetAssociative[Value](size)
	if err != nil {
		panic(err)
	}
	return cache
}

func (c *SetAssociative[Value]) set(key uint32) (int, []entry[Value]) {
	var (
		set  = int(key & c.mask)
		base = set * Ways
	)
	return set, c.ways[base : base+Ways : base+Ways]
}

// Find returns a pointer to the value stored for key,
// or nil if key is not resident.
// A hit makes key the most recently used entry of its set.
// The pointer is valid until the next call to
// [SetAssociative.Add], [SetAssociative.Remove], or [SetAssociative.Reset].
func (c *SetAssociative[Value]) Find(key uint32) *Value {
	set, ways := c.set(key)
	ranking := c.orders[set]
	for position := range Ways {
		way := &ways[ranking.Way(position)]
		if way.resident && way.key == key {
			c.orders[set] = ranking.Promote(position)
			return &way.value
		}
	}
	return nil
}

// Get returns a copy of the value stored for key
// and true if key is resident; otherwise it returns
// the zero value and false.
// Like [SetAssociative.Find], a hit refreshes key.
func (c *SetAssociative[Value]) Get(key uint32) (Value, bool) {
	if value := c.Find(key); value != nil {
		return *value, true
	}
	var zero Value
	return zero, false
}

// Add stores value for key in the least recently used way
// of the key's set and makes it the most recently used.
// Key must not already be resident.
func (c *SetAssociative[Value]) Add(key uint32, value Value) {
	set, ways := c.set(key)
	if debugging {
		assert(lookup(ways, key) < 0,
			"set-associative add of a resident key")
	}
	var (
		ranking = c.orders[set]
		victim  = &ways[ranking.LRU()]
	)
	if !victim.resident {
		c.count++
	}
	*victim = entry[Value]{
		value:    value,
		key:      key,
		resident: true,
	}
	c.orders[set] = ranking.Promote(Ways - 1)
}

// Remove invalidates key if it is resident and makes
// its way the least recently used of the set.
// Missing keys leave the set untouched.
func (c *SetAssociative[Value]) Remove(key uint32) {
	set, ways := c.set(key)
	way := lookup(ways, key)
	if way < 0 {
		return
	}
	ways[way] = entry[Value]{}
	c.count--
	ranking := c.orders[set]
	c.orders[set] = ranking.Demote(ranking.Position(way))
}

// lookup returns the way holding key, or -1.
// It does not affect recency.
func lookup[Value any](ways []entry[Value], key uint32) int {
	for i := range ways {
		if way := &ways[i]; way.resident && way.key == key {
			return i
		}
	}
	return -1
}

// Reset removes every entry and restores the initial recency order.
func (c *SetAssociative[_]) Reset() {
	clear(c.ways)
	c.resetOrders()
	c.count = 0
}

func (c *SetAssociative[_]) resetOrders() {
	for i := range c.orders {
		c.orders[i] = order.Initial
	}
}

// Len returns the number of resident keys.
func (c *SetAssociative[_]) Len() int { return c.count }

// Size returns the total number of ways across all sets.
func (c *SetAssociative[_]) Size() int { return len(c.ways) }

// Sets returns the number of sets.
func (c *SetAssociative[_]) Sets() int { return len(c.orders) }

// Keys returns an iterator over the resident keys in set order.
// Iteration does not affect recency.
func (c *SetAssociative[_]) Keys() iter.Seq[uint32] {
	return residentKeys(c.ways)
}
