package packstore

// insertBytes opens n zero bytes at off, shifting everything after off to the
// right. It reallocates only when the capacity is exhausted.
func insertBytes(s []byte, off, n int) []byte {
	if n == 0 {
		return s
	}
	oldLen := len(s)
	newLen := oldLen + n
	if cap(s) >= newLen {
		s = s[:newLen]
	} else {
		ns := make([]byte, newLen, max(2*cap(s), newLen))
		copy(ns, s[:off])
		copy(ns[off+n:], s[off:oldLen])
		return ns
	}
	copy(s[off+n:], s[off:oldLen])
	clear(s[off : off+n])
	return s
}

// eraseBytes removes n bytes at off, shifting everything after them left.
func eraseBytes(s []byte, off, n int) []byte {
	if n == 0 {
		return s
	}
	copy(s[off:], s[off+n:])
	return s[:len(s)-n]
}

// insertSlot inserts v at index i.
func insertSlot[T any](s []T, i int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// eraseSlot removes the element at index i.
func eraseSlot[T any](s []T, i int) []T {
	copy(s[i:], s[i+1:])
	var zero T
	s[len(s)-1] = zero
	return s[:len(s)-1]
}
