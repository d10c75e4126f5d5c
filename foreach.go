package packstore

// Changes tells ForEach which of the components handed to the callback were
// modified. Bit 0 stands for the first component argument, bit 1 for the
// second and bit 2 for the third. The matching dirty bits of the entity are
// set.
type Changes uint8

const (
	NoChange   Changes = 0
	Changed1   Changes = 1 << 0
	Changed2   Changes = 1 << 1
	Changed3   Changes = 1 << 2
	ChangedAll Changes = Changed1 | Changed2 | Changed3
)

// ChangedIf returns ChangedAll when changed is true, NoChange otherwise.
func ChangedIf(changed bool) Changes {
	if changed {
		return ChangedAll
	}
	return NoChange
}

// dirtyBits maps argument-position changes onto component dirty bits.
func (ch Changes) dirtyBits(ids ...ComponentID) bitmask64 {
	var m bitmask64
	for i, id := range ids {
		if ch&(1<<i) != 0 {
			m.set(id)
		}
	}
	return m
}

// cursor walks the records whose presence mask contains mask. It remembers
// the entity it yielded and only moves past the current slot if that slot
// still holds the same entity, so deleting the visited entity (which swaps
// the last record into its slot) neither skips nor repeats a record.
type cursor struct {
	s        *Storage
	rec      *record
	mask     bitmask64
	pos      int
	entity   Entity
	visiting bool
}

func (s *Storage) cursor(mask bitmask64) cursor {
	return cursor{s: s, mask: mask}
}

func (c *cursor) next() bool {
	records := c.s.records
	if c.visiting && c.pos < len(records) && records[c.pos].id == c.entity {
		c.pos++
	}
	for ; c.pos < len(records); c.pos++ {
		r := &records[c.pos]
		if r.present.contains(c.mask) {
			c.rec = r
			c.entity = r.id
			c.visiting = true
			return true
		}
	}
	c.rec = nil
	c.visiting = false
	return false
}

// current returns the record under the cursor. It panics when the cursor is
// not on an entity: before the first next or after next returned false.
func (c *cursor) current() *record {
	if c.rec == nil {
		panic("packstore: filter has no current entity; call Next first")
	}
	return c.rec
}

func (c *cursor) reset() {
	c.pos = 0
	c.rec = nil
	c.visiting = false
}

// ForEach1 calls fn for every entity that has component c1. The callback may
// delete the entity it is visiting; it must not create entities, delete other
// entities, or add or remove components of any entity during the pass.
func ForEach1[T1 any](s *Storage, c1 ComponentID, fn func(Entity, *T1) Changes) error {
	d1, err := typed[T1](&s.components, c1)
	if err != nil {
		return err
	}
	if err := s.open(); err != nil {
		return err
	}
	cur := s.cursor(maskOf(c1))
	for cur.next() {
		r := cur.rec
		ch := fn(cur.entity, ref[T1](s, r, c1, d1))
		if ch != NoChange && cur.stillAt(r) {
			r.dirty |= ch.dirtyBits(c1)
		}
	}
	return nil
}

// ForEach2 calls fn for every entity that has both c1 and c2. The rules of
// ForEach1 apply.
func ForEach2[T1, T2 any](s *Storage, c1, c2 ComponentID, fn func(Entity, *T1, *T2) Changes) error {
	d1, err := typed[T1](&s.components, c1)
	if err != nil {
		return err
	}
	d2, err := typed[T2](&s.components, c2)
	if err != nil {
		return err
	}
	if err := s.open(); err != nil {
		return err
	}
	cur := s.cursor(maskOf(c1, c2))
	for cur.next() {
		r := cur.rec
		ch := fn(cur.entity, ref[T1](s, r, c1, d1), ref[T2](s, r, c2, d2))
		if ch != NoChange && cur.stillAt(r) {
			r.dirty |= ch.dirtyBits(c1, c2)
		}
	}
	return nil
}

// ForEach3 calls fn for every entity that has c1, c2 and c3. The rules of
// ForEach1 apply.
func ForEach3[T1, T2, T3 any](s *Storage, c1, c2, c3 ComponentID, fn func(Entity, *T1, *T2, *T3) Changes) error {
	d1, err := typed[T1](&s.components, c1)
	if err != nil {
		return err
	}
	d2, err := typed[T2](&s.components, c2)
	if err != nil {
		return err
	}
	d3, err := typed[T3](&s.components, c3)
	if err != nil {
		return err
	}
	if err := s.open(); err != nil {
		return err
	}
	cur := s.cursor(maskOf(c1, c2, c3))
	for cur.next() {
		r := cur.rec
		ch := fn(cur.entity, ref[T1](s, r, c1, d1), ref[T2](s, r, c2, d2), ref[T3](s, r, c3, d3))
		if ch != NoChange && cur.stillAt(r) {
			r.dirty |= ch.dirtyBits(c1, c2, c3)
		}
	}
	return nil
}

// stillAt reports whether the visited entity is still stored in r, i.e. the
// callback did not delete it.
func (c *cursor) stillAt(r *record) bool {
	return c.pos < len(c.s.records) && &c.s.records[c.pos] == r && r.id == c.entity
}
