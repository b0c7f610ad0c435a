package order_test

import (
	"slices"
	"testing"

	"github.com/djdv/go-setassoc/internal/order"
)

func TestOrder(t *testing.T) {
	t.Run("initial", initial)
	t.Run("encoding", encoding)
	t.Run("promote", promote)
	t.Run("demote", demote)
	t.Run("position", position)
	t.Run("validity", validity)
}

func initial(t *testing.T) {
	t.Parallel()
	const want = 0b11_10_01_00
	if order.Initial != want {
		t.Fatalf("initial order"+
			"\n\tgot: %#08b"+
			"\n\twant: %#08b",
			uint8(order.Initial), want)
	}
	checkWays(t, order.Initial, [order.Ways]uint8{0, 1, 2, 3}, "initial")
	if got := order.Initial.MRU(); got != 0 {
		t.Errorf("initial MRU: got %d want 0", got)
	}
	if got := order.Initial.LRU(); got != 3 {
		t.Errorf("initial LRU: got %d want 3", got)
	}
}

func encoding(t *testing.T) {
	t.Parallel()
	for _, ways := range permutations() {
		packed := order.Encode(ways)
		checkWays(t, packed, ways, "round trip")
		if got, want := packed.LRU(), int(ways[order.Ways-1]); got != want {
			t.Fatalf("LRU of %v: got %d want %d", ways, got, want)
		}
	}
}

// The packed arithmetic must agree with the array
// form of "remove and reinsert at the front".
func promote(t *testing.T) {
	t.Parallel()
	for _, ways := range permutations() {
		for p := range order.Ways {
			got := order.Encode(ways).Promote(p)
			checkWays(t, got, modelPromote(ways, p), "promote")
		}
	}
}

func demote(t *testing.T) {
	t.Parallel()
	for _, ways := range permutations() {
		for p := range order.Ways {
			got := order.Encode(ways).Demote(p)
			checkWays(t, got, modelDemote(ways, p), "demote")
		}
	}
}

func position(t *testing.T) {
	t.Parallel()
	for _, ways := range permutations() {
		packed := order.Encode(ways)
		for p, way := range ways {
			if got := packed.Position(int(way)); got != p {
				t.Fatalf("position of way %d in %v: got %d want %d",
					way, ways, got, p)
			}
		}
	}
	if got := order.Order(0).Position(3); got != -1 {
		t.Errorf("position of missing way: got %d want -1", got)
	}
}

func validity(t *testing.T) {
	t.Parallel()
	var valid int
	for candidate := range 1 << 8 {
		if order.Order(candidate).Valid() {
			valid++
		}
	}
	if want := len(permutations()); valid != want {
		t.Errorf("valid byte count: got %d want %d", valid, want)
	}
	// Every sequence of operations must stay within the valid set.
	packed := order.Initial
	for step := range 1024 {
		p := step * 7 % order.Ways
		if step%3 == 0 {
			packed = packed.Demote(p)
		} else {
			packed = packed.Promote(p)
		}
		if !packed.Valid() {
			t.Fatalf("step %d left invalid order %#08b", step, uint8(packed))
		}
	}
}

func checkWays(tb testing.TB, packed order.Order, want [order.Ways]uint8, action string) {
	tb.Helper()
	if got := packed.Decode(); got != want {
		tb.Fatalf("%s: unexpected ranking"+
			"\n\tgot: %v"+
			"\n\twant: %v",
			action, got, want)
	}
	if !packed.Valid() {
		tb.Fatalf("%s: %#08b is not a permutation", action, uint8(packed))
	}
}

func modelPromote(ways [order.Ways]uint8, p int) [order.Ways]uint8 {
	way := ways[p]
	rest := slices.Delete(slices.Clone(ways[:]), p, p+1)
	return [order.Ways]uint8(slices.Insert(rest, 0, way))
}

func modelDemote(ways [order.Ways]uint8, p int) [order.Ways]uint8 {
	way := ways[p]
	rest := slices.Delete(slices.Clone(ways[:]), p, p+1)
	return [order.Ways]uint8(append(rest, way))
}

func permutations() [][order.Ways]uint8 {
	var (
		result  [][order.Ways]uint8
		permute func(prefix []uint8, remaining []uint8)
	)
	permute = func(prefix, remaining []uint8) {
		if len(remaining) == 0 {
			result = append(result, [order.Ways]uint8(prefix))
			return
		}
		for i, way := range remaining {
			next := slices.Delete(slices.Clone(remaining), i, i+1)
			permute(append(slices.Clone(prefix), way), next)
		}
	}
	permute(nil, []uint8{0, 1, 2, 3})
	return result
}
