package packstore

// Entity is the identity of a thing in a Storage. On its own it carries no
// data; components are attached to it through the Storage.
type Entity uint32

// record is the per-entity state.
type record struct {
	data    []byte        // packed flat components, ascending ID, no padding
	boxes   []Placeholder // boxed components, ascending ID
	present bitmask64     // which components the entity has
	dirty   bitmask64     // which components changed since last cleared
	id      Entity
}

// destroyBoxes destroys every boxed payload the record owns.
func (r *record) destroyBoxes() {
	for i, b := range r.boxes {
		b.Destroy()
		r.boxes[i] = nil
	}
	r.boxes = r.boxes[:0]
}

// clone returns a deep copy of r under a new id. Flat bytes are copied
// verbatim and every boxed payload is cloned.
func (r *record) clone(id Entity) record {
	c := record{
		id:      id,
		present: r.present,
		dirty:   r.dirty,
		data:    append([]byte(nil), r.data...),
	}
	if len(r.boxes) > 0 {
		c.boxes = make([]Placeholder, len(r.boxes))
		for i, b := range r.boxes {
			c.boxes[i] = b.Clone()
		}
	}
	return c
}
