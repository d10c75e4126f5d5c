package packstore

import "math/bits"

// MaxComponentTypes is the number of component types a Storage can hold. It is
// bounded by the width of the per-entity presence mask.
const MaxComponentTypes = 64

// bitmask64 represents a set of up to 64 component IDs. Each bit corresponds
// to a component ID; a set bit means the component is part of the set.
type bitmask64 uint64

// set enables the bit corresponding to the given component ID.
func (m *bitmask64) set(bit ComponentID) {
	*m |= bitmask64(1) << (bit & 63)
}

// unset disables the bit corresponding to the given component ID.
func (m *bitmask64) unset(bit ComponentID) {
	*m &^= bitmask64(1) << (bit & 63)
}

// contains checks if all the bits set in sub are also set in m. This is the
// matching rule for ForEach and filters.
func (m bitmask64) contains(sub bitmask64) bool {
	return m&sub == sub
}

// containsBit checks if a specific bit is set in the mask.
func (m bitmask64) containsBit(bit ComponentID) bool {
	return m&(bitmask64(1)<<(bit&63)) != 0
}

// below returns the bits of m with an ID strictly lower than bit.
func (m bitmask64) below(bit ComponentID) bitmask64 {
	return m & (bitmask64(1)<<(bit&63) - 1)
}

// count returns the number of set bits.
func (m bitmask64) count() int {
	return bits.OnesCount64(uint64(m))
}

// maskOf builds a mask from a list of component IDs.
func maskOf(ids ...ComponentID) bitmask64 {
	var m bitmask64
	for _, id := range ids {
		m.set(id)
	}
	return m
}
