package setassoc

import (
	"math/rand"
	"slices"
	"testing"
)

func checkOrder(tb testing.TB, cache *SetAssociative[int], set int, want [Ways]uint8, action string) {
	tb.Helper()
	ranking := cache.orders[set]
	if !ranking.Valid() {
		tb.Fatalf("%s: order %#08b is not a permutation", action, uint8(ranking))
	}
	if got := ranking.Decode(); got != want {
		tb.Fatalf("%s: unexpected MRU to LRU ways"+
			"\n\tgot: %v"+
			"\n\twant: %v",
			action, got, want)
	}
}

func checkWay(tb testing.TB, cache *SetAssociative[int], set, way int, key uint32) {
	tb.Helper()
	slot := cache.ways[set*Ways+way]
	if !slot.resident || slot.key != key {
		tb.Fatalf("expected key %d in set %d way %d, got %d (resident %t)",
			key, set, way, slot.key, slot.resident)
	}
}

func TestOrderTransitions(t *testing.T) {
	cache := MustSetAssociative[int](4)
	checkOrder(t, cache, 0, [Ways]uint8{0, 1, 2, 3}, "initial")
	if cache.orders[0] != 0b11_10_01_00 {
		t.Fatalf("initial order byte %#08b", uint8(cache.orders[0]))
	}

	// The initial LRU way is 3, so the first add lands there.
	cache.Add(100, 0)
	checkWay(t, cache, 0, 3, 100)
	checkOrder(t, cache, 0, [Ways]uint8{3, 0, 1, 2}, "first add")

	cache.Add(101, 1)
	cache.Add(102, 2)
	cache.Add(103, 3)
	checkWay(t, cache, 0, 2, 101)
	checkWay(t, cache, 0, 1, 102)
	checkWay(t, cache, 0, 0, 103)
	checkOrder(t, cache, 0, [Ways]uint8{0, 1, 2, 3}, "full set")

	// Hit on way 2 (position 2): ways 0 and 1 shift back.
	if cache.Find(101) == nil {
		t.Fatal("expected hit")
	}
	checkOrder(t, cache, 0, [Ways]uint8{2, 0, 1, 3}, "find hit")

	// Misses do not reorder.
	if cache.Find(200) != nil {
		t.Fatal("expected miss")
	}
	checkOrder(t, cache, 0, [Ways]uint8{2, 0, 1, 3}, "find miss")

	// Removing way 0 (position 1) sinks it; 1 and 3 move up.
	cache.Remove(103)
	checkOrder(t, cache, 0, [Ways]uint8{2, 1, 3, 0}, "remove")
	cache.Remove(103)
	checkOrder(t, cache, 0, [Ways]uint8{2, 1, 3, 0}, "remove absent")

	cache.Add(104, 4)
	checkWay(t, cache, 0, 0, 104)
	checkOrder(t, cache, 0, [Ways]uint8{0, 2, 1, 3}, "add into freed way")

	cache.Reset()
	checkOrder(t, cache, 0, [Ways]uint8{0, 1, 2, 3}, "reset")
}

// modelSet is the array form of a set:
// ways listed MRU to LRU and "remove and reinsert" updates.
type modelSet struct {
	keys     [Ways]uint32
	resident [Ways]bool
	rank     []uint8
}

func newModelSet() *modelSet {
	return &modelSet{rank: []uint8{0, 1, 2, 3}}
}

func (m *modelSet) moveTo(position int, way uint8) {
	i := slices.Index(m.rank, way)
	m.rank = slices.Delete(m.rank, i, i+1)
	m.rank = slices.Insert(m.rank, position, way)
}

func (m *modelSet) find(key uint32) bool {
	for _, way := range m.rank {
		if m.resident[way] && m.keys[way] == key {
			m.moveTo(0, way)
			return true
		}
	}
	return false
}

func (m *modelSet) add(key uint32) {
	way := m.rank[Ways-1]
	m.keys[way], m.resident[way] = key, true
	m.moveTo(0, way)
}

func (m *modelSet) remove(key uint32) {
	for way := range uint8(Ways) {
		if m.resident[way] && m.keys[way] == key {
			m.resident[way] = false
			m.moveTo(Ways-1, way)
			return
		}
	}
}

// The packed implementation must track the array model exactly.
func TestMatchesArrayModel(t *testing.T) {
	const (
		size     = 16
		universe = 64
		steps    = 50_000
	)
	var (
		cache  = MustSetAssociative[int](size)
		models = make([]*modelSet, size/Ways)
		rng    = rand.New(rand.NewSource(1))
	)
	for i := range models {
		models[i] = newModelSet()
	}
	for step := range steps {
		var (
			key   = uint32(rng.Intn(universe))
			set   = int(key) % len(models)
			model = models[set]
		)
		switch rng.Intn(4) {
		case 0, 1:
			hit := cache.Find(key) != nil
			if want := model.find(key); hit != want {
				t.Fatalf("step %d: find %d hit=%t want %t", step, key, hit, want)
			}
			if !hit {
				cache.Add(key, step)
				model.add(key)
			}
		case 2:
			cache.Remove(key)
			model.remove(key)
		default:
			hit := cache.Find(key) != nil
			if want := model.find(key); hit != want {
				t.Fatalf("step %d: find %d hit=%t want %t", step, key, hit, want)
			}
		}
		checkOrder(t, cache, set, [Ways]uint8(model.rank), "random operations")
		resident := 0
		for _, m := range models {
			for _, ok := range m.resident {
				if ok {
					resident++
				}
			}
		}
		if cache.Len() != resident || cache.Len() > cache.Size() {
			t.Fatalf("step %d: Len %d, model %d, Size %d",
				step, cache.Len(), resident, cache.Size())
		}
	}
	for set, ranking := range cache.orders {
		if !ranking.Valid() {
			t.Errorf("set %d: invalid order %#08b", set, uint8(ranking))
		}
	}
}
