package packstore

import (
	"fmt"
	"unsafe"
)

// Set stores v as component c of entity e and marks c dirty.
//
// When e does not have c yet, c's bytes are opened at its offset and the
// bytes of components with a higher ID move right. An existing boxed value is
// destroyed before v is constructed in its place.
//
// Pointers previously returned by Get for flat components of e are
// invalidated when Set adds a component.
//
// Parameters:
//   - s: The Storage holding e.
//   - e: The entity to modify.
//   - c: The component ID, which must have been registered for T.
//   - v: The value to store.
//
// Returns:
//   - ErrTypeMismatch or ErrUnknownComponent for a bad c, ErrUnknownEntity
//     or ErrClosed for a bad e, nil otherwise.
func Set[T any](s *Storage, e Entity, c ComponentID, v T) error {
	desc, err := typed[T](&s.components, c)
	if err != nil {
		return err
	}
	r, err := s.lookup(e)
	if err != nil {
		return err
	}
	if desc.flat {
		setFlat(s, r, c, desc.size, v)
	} else {
		setBoxed(s, r, c, v)
	}
	r.present.set(c)
	r.dirty.set(c)
	return nil
}

func setFlat[T any](s *Storage, r *record, c ComponentID, size int, v T) {
	off := s.components.offset(r.present, c)
	if !r.present.containsBit(c) {
		r.data = insertBytes(r.data, off, size)
	}
	if size == 0 {
		return
	}
	*(*T)(unsafe.Pointer(&r.data[off])) = v
}

func setBoxed[T any](s *Storage, r *record, c ComponentID, v T) {
	i := s.components.boxIndex(r.present, c)
	if r.present.containsBit(c) {
		r.boxes[i].(*holder[T]).replace(v)
		return
	}
	r.boxes = insertSlot[Placeholder](r.boxes, i, newHolder(v))
}

// Get returns a pointer to component c of entity e. For flat components the
// pointer aliases e's packed buffer and is valid until a component is added
// to or removed from e; for boxed components it points at the payload and is
// valid until the component is removed or e is deleted.
//
// Returns:
//   - A pointer to the component value, or nil and ErrMissingComponent when
//     e does not have c.
func Get[T any](s *Storage, e Entity, c ComponentID) (*T, error) {
	desc, err := typed[T](&s.components, c)
	if err != nil {
		return nil, err
	}
	r, err := s.lookup(e)
	if err != nil {
		return nil, err
	}
	if !r.present.containsBit(c) {
		return nil, fmt.Errorf("%w: entity %d, component %q (%d)", ErrMissingComponent, e, desc.name, c)
	}
	return ref[T](s, r, c, desc), nil
}

// ref resolves a present component of r without further checks.
func ref[T any](s *Storage, r *record, c ComponentID, desc *Component) *T {
	if !desc.flat {
		return r.boxes[s.components.boxIndex(r.present, c)].(*holder[T]).held()
	}
	if desc.size == 0 {
		return new(T)
	}
	return (*T)(unsafe.Pointer(&r.data[s.components.offset(r.present, c)]))
}

// RemoveComponent removes component c from e, destroying a boxed payload and
// closing the gap in the packed buffer. The dirty bit for c is set. Removing a
// component e does not have is a no-op.
func (s *Storage) RemoveComponent(e Entity, c ComponentID) error {
	desc, err := s.components.descriptor(c)
	if err != nil {
		return err
	}
	r, err := s.lookup(e)
	if err != nil {
		return err
	}
	if !r.present.containsBit(c) {
		return nil
	}
	if desc.flat {
		r.data = eraseBytes(r.data, s.components.offset(r.present, c), desc.size)
	} else {
		i := s.components.boxIndex(r.present, c)
		r.boxes[i].Destroy()
		r.boxes = eraseSlot(r.boxes, i)
	}
	r.present.unset(c)
	r.dirty.set(c)
	return nil
}
