// Package order packs the recency ranking of a 4-way cache set into one byte.
//
// The byte holds four 2-bit fields, each naming a way.
// Field p (bits 2p..2p+1) is recency position p:
// position 0 is the most recently used way,
// position 3 the least recently used.
// A valid Order names every way exactly once.
package order

// Ways is the number of ways ranked by an [Order].
const Ways = 4

const (
	fieldBits = 2
	fieldMask = 1<<fieldBits - 1
	lruShift  = (Ways - 1) * fieldBits
)

// Order is a packed MRU to LRU ranking of ways 0 through 3.
type Order uint8

// Initial ranks way 0 as most recently used and way 3 as least.
const Initial Order = 3<<6 | 2<<4 | 1<<2 | 0

// below returns a mask of the low n bits.
func below(n int) Order { return Order(uint(1)<<n - 1) }

// Way returns the way at recency position p.
func (o Order) Way(p int) int {
	return int((o >> (p * fieldBits)) & fieldMask)
}

// MRU returns the most recently used way.
func (o Order) MRU() int { return int(o & fieldMask) }

// LRU returns the least recently used way.
func (o Order) LRU() int { return int(o >> lruShift) }

// Position returns the recency position of way,
// or -1 if o does not name it.
func (o Order) Position(way int) int {
	for p := range Ways {
		if o.Way(p) == way {
			return p
		}
	}
	return -1
}

// Promote moves the way at position p to the MRU position.
// Ways ranked ahead of it shift one position toward LRU,
// ways behind it keep their positions.
func (o Order) Promote(p int) Order {
	var (
		shift  = p * fieldBits
		way    = (o >> shift) & fieldMask
		ahead  = o & below(shift)
		behind = o &^ below(shift+fieldBits)
	)
	return behind | ahead<<fieldBits | way
}

// Demote moves the way at position p to the LRU position.
// Ways ranked behind it shift one position toward MRU,
// ways ahead of it keep their positions.
func (o Order) Demote(p int) Order {
	var (
		shift  = p * fieldBits
		way    = (o >> shift) & fieldMask
		ahead  = o & below(shift)
		behind = (o >> (shift + fieldBits)) << shift
	)
	return way<<lruShift | behind | ahead
}

// Valid reports whether o names each way exactly once.
func (o Order) Valid() bool {
	var seen uint8
	for p := range Ways {
		seen |= 1 << o.Way(p)
	}
	return seen == 1<<Ways-1
}

// Decode unpacks o into ways listed from MRU to LRU.
func (o Order) Decode() [Ways]uint8 {
	var ways [Ways]uint8
	for p := range ways {
		ways[p] = uint8(o.Way(p))
	}
	return ways
}

// Encode packs ways, listed from MRU to LRU, into an [Order].
// Each way is truncated to its low 2 bits.
func Encode(ways [Ways]uint8) Order {
	var o Order
	for p, way := range ways {
		o |= Order(way&fieldMask) << (p * fieldBits)
	}
	return o
}
