package packstore

import "fmt"

// It is assumed the first few registered components are the ones accessed most
// often. Offsets for those are precomputed for every presence combination.
const (
	cacheSize = 12
	cacheMask = bitmask64(1)<<cacheSize - 1
)

// offsetCache maps a presence subset of the first cacheSize components to the
// number of flat bytes those components occupy. Indexing it with the subset
// of present components below c yields c's byte offset in an entity buffer.
type offsetCache struct {
	table [1 << cacheSize]uint32
	known int // number of components folded into the table
}

// extend folds a newly registered component into the table. Only subsets of
// the components registered so far are ever looked up, so for component c it
// is enough to fill the indices [1<<c, 2<<c): every subset that has bit c as
// its highest bit.
func (oc *offsetCache) extend(c ComponentID, size int) {
	if int(c) >= cacheSize {
		return
	}
	if int(c) != oc.known {
		panic(fmt.Sprintf("packstore: offset cache extended out of order: got component %d, want %d", c, oc.known))
	}
	lo := 1 << c
	for i := lo; i < lo<<1; i++ {
		oc.table[i] = oc.table[i-lo] + uint32(size)
	}
	oc.known++
}

// at returns the cached offset for a presence subset. The subset must lie
// within the cached prefix.
func (oc *offsetCache) at(subset bitmask64) int {
	if subset&^cacheMask != 0 {
		panic(fmt.Sprintf("packstore: offset cache lookup outside cached prefix: %#x", uint64(subset)))
	}
	return int(oc.table[subset])
}
