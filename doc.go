// Package setassoc implements small fixed-capacity caches
// modeled on hardware cache organizations, keyed by uint32.
//
// Both caches allocate all of their storage up front and
// never allocate during [DirectMapped.Find], [DirectMapped.Add],
// or [DirectMapped.Remove] (or their [SetAssociative] counterparts).
// Every operation is O(1).
// Neither cache is safe for concurrent use.
//
// The following is a summary intended for maintainers.
//
// Glossary and invariants:
//
//   - Slot / way
//
//     A stored value, its key, and a resident flag.
//     Any uint32 is a valid key; residency is tracked
//     explicitly rather than by reserving a key value.
//
//   - Set
//
//     A group of [Ways] slots sharing one index
//     in a [SetAssociative] cache.
//
//   - Order byte
//
//     Per-set recency ranking packed as four 2-bit way indices.
//     Bits 0–1 hold the most recently used way, bits 6–7 the least.
//     The four fields are always a permutation of {0,1,2,3}.
//     Initial value 0b11_10_01_00: way 0 first, way 3 last.
//
// Indexing:
//
//   - [DirectMapped] slot = key & (size - 1).
//
//   - [SetAssociative] set = key & (size/[Ways] - 1).
//
// Operations (set-associative):
//
//   - Find hit
//
//     The matched way moves to the front of the ranking;
//     ways that were ahead of it shift back by one.
//
//   - Add
//
//     Overwrites the way in the last position,
//     which then moves to the front.
//
//   - Remove
//
//     Clears the matched way and moves it to the last position,
//     so the next Add in that set reuses it.
//
// Adding a key that is already resident is a caller error.
// Builds tagged `setassoc_debug` panic when it happens;
// other builds overwrite as described above and may leave
// a duplicate entry in a [SetAssociative] set.
//
// Callers choose between the two caches by access pattern:
// direct mapping does the least work per operation,
// set associativity tolerates keys that collide on index.
package setassoc
