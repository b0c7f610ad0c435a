package setassoc

import "iter"

type (
	// entry is one slot of a cache.
	// Only resident entries are visible to lookups.
	entry[Value any] struct {
		value    Value
		key      uint32
		resident bool
	}
	// DirectMapped maps every key to exactly one slot
	// and resolves conflicts by overwriting that slot.
	// Concurrent access must be guarded by the caller.
	// Constructed by [NewDirectMapped].
	DirectMapped[Value any] struct {
		slots []entry[Value]
		mask  uint32
		count int
	}
)

// MaximumSize is the largest size addressable by a uint32 key.
const MaximumSize = 1 << 32

// NewDirectMapped creates a [DirectMapped] cache with the given number of slots.
// Size must be a power of two.
func NewDirectMapped[Value any](size int) (*DirectMapped[Value], error) {
	if err := checkSize(size, 1); err != nil {
		return nil, err
	}
	return &DirectMapped[Value]{
		slots: make([]entry[Value], size),
		mask:  uint32(size - 1),
	}, nil
}

// MustDirectMapped is like [NewDirectMapped] but panics if size is invalid.
func MustDirectMapped[Value any](size int) *DirectMapped[Value] {
	cache, err := NewDirectMapped[Value](size)
	if err != nil {
		panic(err)
	}
	return cache
}

// Find returns a pointer to the value stored for key,
// or nil if key is not resident.
// The pointer is valid until the next call to
// [DirectMapped.Add], [DirectMapped.Remove], or [DirectMapped.Reset].
func (c *DirectMapped[Value]) Find(key uint32) *Value {
	slot := &c.slots[key&c.mask]
	if slot.resident && slot.key == key {
		return &slot.value
	}
	return nil
}

// Get returns a copy of the value stored for key
// and true if key is resident; otherwise it returns
// the zero value and false.
func (c *DirectMapped[Value]) Get(key uint32) (Value, bool) {
	if value := c.Find(key); value != nil {
		return *value, true
	}
	var zero Value
	return zero, false
}

// Add stores value for key, discarding whatever
// previously occupied the key's slot.
// Key must not already be resident.
func (c *DirectMapped[Value]) Add(key uint32, value Value) {
	if debugging {
		assert(c.Find(key) == nil,
			"direct-mapped add of a resident key")
	}
	slot := &c.slots[key&c.mask]
	if !slot.resident {
		c.count++
	}
	*slot = entry[Value]{
		value:    value,
		key:      key,
		resident: true,
	}
}

// Remove invalidates key if it is resident.
// A different key sharing the slot is left in place.
func (c *DirectMapped[Value]) Remove(key uint32) {
	slot := &c.slots[key&c.mask]
	if !slot.resident || slot.key != key {
		return
	}
	*slot = entry[Value]{}
	c.count--
}

// Reset removes every entry.
func (c *DirectMapped[_]) Reset() {
	clear(c.slots)
	c.count = 0
}

// Len returns the number of resident keys.
func (c *DirectMapped[_]) Len() int { return c.count }

// Size returns the number of slots.
func (c *DirectMapped[_]) Size() int { return len(c.slots) }

// Keys returns an iterator over the resident keys in slot order.
func (c *DirectMapped[_]) Keys() iter.Seq[uint32] {
	return residentKeys(c.slots)
}

func residentKeys[Value any](slots []entry[Value]) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for i := range slots {
			if slot := &slots[i]; slot.resident {
				if !yield(slot.key) {
					return
				}
			}
		}
	}
}
