package packstore

// Filter1 is a pull-style iterator over all entities that have one given
// component. It follows the same matching and mutation rules as ForEach1 and
// is useful when the loop body needs to break early or keep local state.
//
// Example:
//
//	f, err := packstore.NewFilter1[Position](s, pos)
//	for f.Next() {
//	    p := f.Get()
//	    p.X++
//	    f.MarkChanged(packstore.Changed1)
//	}
type Filter1[T1 any] struct {
	s   *Storage
	d1  *Component
	cur cursor
	c1  ComponentID
}

// NewFilter1 creates a filter over entities holding c1, which must have been
// registered for T1.
func NewFilter1[T1 any](s *Storage, c1 ComponentID) (*Filter1[T1], error) {
	d1, err := typed[T1](&s.components, c1)
	if err != nil {
		return nil, err
	}
	return &Filter1[T1]{s: s, d1: d1, c1: c1, cur: s.cursor(maskOf(c1))}, nil
}

// Reset rewinds the filter to the first entity.
func (f *Filter1[T1]) Reset() { f.cur.reset() }

// Next advances to the next matching entity. It must be called before Entity
// or Get.
//
// Returns:
//   - true if another matching entity was found, false otherwise.
func (f *Filter1[T1]) Next() bool { return f.cur.next() }

// Entity returns the current entity.
func (f *Filter1[T1]) Entity() Entity { return f.cur.entity }

// Get returns a pointer to the current entity's component. This should only
// be called after Next has returned true; otherwise it panics.
//
// Returns:
//   - A pointer to the component value. For flat components it aliases the
//     entity's packed buffer and is valid until a component is added to or
//     removed from the entity.
func (f *Filter1[T1]) Get() *T1 {
	return ref[T1](f.s, f.cur.current(), f.c1, f.d1)
}

// MarkChanged sets the dirty bits of the current entity for the components
// named in ch.
func (f *Filter1[T1]) MarkChanged(ch Changes) {
	if f.cur.stillAt(f.cur.rec) {
		f.cur.rec.dirty |= ch.dirtyBits(f.c1)
	}
}

// Filter2 iterates entities that have both of two components.
type Filter2[T1, T2 any] struct {
	s      *Storage
	d1, d2 *Component
	cur    cursor
	c1, c2 ComponentID
}

// NewFilter2 creates a filter over entities holding c1 and c2.
func NewFilter2[T1, T2 any](s *Storage, c1, c2 ComponentID) (*Filter2[T1, T2], error) {
	d1, err := typed[T1](&s.components, c1)
	if err != nil {
		return nil, err
	}
	d2, err := typed[T2](&s.components, c2)
	if err != nil {
		return nil, err
	}
	return &Filter2[T1, T2]{s: s, d1: d1, d2: d2, c1: c1, c2: c2, cur: s.cursor(maskOf(c1, c2))}, nil
}

func (f *Filter2[T1, T2]) Reset()         { f.cur.reset() }
func (f *Filter2[T1, T2]) Next() bool     { return f.cur.next() }
func (f *Filter2[T1, T2]) Entity() Entity { return f.cur.entity }

// Get returns the current entity's components. Like Filter1.Get it panics
// unless Next has returned true.
func (f *Filter2[T1, T2]) Get() (*T1, *T2) {
	r := f.cur.current()
	return ref[T1](f.s, r, f.c1, f.d1), ref[T2](f.s, r, f.c2, f.d2)
}

func (f *Filter2[T1, T2]) MarkChanged(ch Changes) {
	if f.cur.stillAt(f.cur.rec) {
		f.cur.rec.dirty |= ch.dirtyBits(f.c1, f.c2)
	}
}

// Filter3 iterates entities that have all of three components.
type Filter3[T1, T2, T3 any] struct {
	s          *Storage
	d1, d2, d3 *Component
	cur        cursor
	c1, c2, c3 ComponentID
}

// NewFilter3 creates a filter over entities holding c1, c2 and c3.
func NewFilter3[T1, T2, T3 any](s *Storage, c1, c2, c3 ComponentID) (*Filter3[T1, T2, T3], error) {
	d1, err := typed[T1](&s.components, c1)
	if err != nil {
		return nil, err
	}
	d2, err := typed[T2](&s.components, c2)
	if err != nil {
		return nil, err
	}
	d3, err := typed[T3](&s.components, c3)
	if err != nil {
		return nil, err
	}
	return &Filter3[T1, T2, T3]{
		s: s, d1: d1, d2: d2, d3: d3,
		c1: c1, c2: c2, c3: c3,
		cur: s.cursor(maskOf(c1, c2, c3)),
	}, nil
}

func (f *Filter3[T1, T2, T3]) Reset()         { f.cur.reset() }
func (f *Filter3[T1, T2, T3]) Next() bool     { return f.cur.next() }
func (f *Filter3[T1, T2, T3]) Entity() Entity { return f.cur.entity }

func (f *Filter3[T1, T2, T3]) Get() (*T1, *T2, *T3) {
	r := f.cur.current()
	return ref[T1](f.s, r, f.c1, f.d1), ref[T2](f.s, r, f.c2, f.d2), ref[T3](f.s, r, f.c3, f.d3)
}

func (f *Filter3[T1, T2, T3]) MarkChanged(ch Changes) {
	if f.cur.stillAt(f.cur.rec) {
		f.cur.rec.dirty |= ch.dirtyBits(f.c1, f.c2, f.c3)
	}
}
