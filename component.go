package packstore

import (
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// ComponentID is the permanent numeric ID of a registered component: its
// position in registration order, 0 to MaxComponentTypes-1.
type ComponentID uint8

// Layout selects how a component type is stored.
type Layout uint8

const (
	// LayoutDefault stores pointer-free types flat and everything else boxed.
	LayoutDefault Layout = iota
	// LayoutFlat stores the value's bytes directly in the entity buffer.
	LayoutFlat
	// LayoutBoxed stores the value behind a Placeholder.
	LayoutBoxed
)

// LayoutPolicy overrides the default flatness of a component type. It is
// consulted once, at registration, on the zero value of the type.
type LayoutPolicy interface {
	Layout() Layout
}

// Component describes one registered component type. It is immutable after
// registration.
type Component struct {
	name  string
	typ   reflect.Type
	proto Placeholder // clone source for boxed components, nil when flat
	size  int
	flat  bool
}

// Name returns the name the component was registered with.
func (c Component) Name() string { return c.name }

// Size returns the number of bytes the component occupies in an entity's
// packed buffer. Boxed components live in the entity's placeholder slots and
// occupy no buffer bytes.
func (c Component) Size() int { return c.size }

// IsFlat reports whether the component is stored as its raw bytes.
func (c Component) IsFlat() bool { return c.flat }

// Type returns the Go type the component was registered for.
func (c Component) Type() reflect.Type { return c.typ }

// componentRegistry is the append-only list of component descriptors plus the
// lookup structures derived from it.
type componentRegistry struct {
	descs   []Component
	names   map[uint64]ComponentID // xxhash of name -> first component with that hash
	offsets offsetCache
	boxed   bitmask64 // components that need a placeholder
	all     bitmask64 // every registered component
}

// RegisterComponent registers T under name and returns its ID. IDs are handed
// out sequentially from 0. It panics when MaxComponentTypes components are
// already registered, and when T forces LayoutFlat while containing pointers.
//
// Boxed components construct one prototype value, which is destroyed when the
// Storage is closed.
//
// Parameters:
//   - s: The Storage to register with.
//   - name: A lookup name for FindComponent. Names need not be unique.
//
// Returns:
//   - The new component's ID.
func RegisterComponent[T any](s *Storage, name string) ComponentID {
	if s.closed {
		panic("packstore: register component on closed storage")
	}
	reg := &s.components
	t := reflect.TypeFor[T]()
	if len(reg.descs) >= MaxComponentTypes {
		panic(fmt.Sprintf("packstore: cannot register component %q (%s): maximum number of component types (%d) reached", name, t, MaxComponentTypes))
	}
	id := ComponentID(len(reg.descs))
	c := Component{name: name, typ: t, flat: isFlat[T]()}
	if c.flat {
		c.size = int(t.Size())
	} else {
		var zero T
		c.proto = newHolder(zero)
		reg.boxed.set(id)
	}
	reg.descs = append(reg.descs, c)
	reg.all.set(id)
	reg.offsets.extend(id, c.size)
	if reg.names == nil {
		reg.names = make(map[uint64]ComponentID, 16)
	}
	h := xxhash.Sum64String(name)
	if _, ok := reg.names[h]; !ok {
		reg.names[h] = id
	}
	s.log.Debug("component registered",
		zap.String("name", name),
		zap.Uint8("id", uint8(id)),
		zap.Stringer("type", t),
		zap.Int("size", c.size),
		zap.Bool("flat", c.flat))
	return id
}

// FindComponent returns the ID of the first component registered under name.
func (s *Storage) FindComponent(name string) (ComponentID, error) {
	reg := &s.components
	if id, ok := reg.names[xxhash.Sum64String(name)]; ok && reg.descs[id].name == name {
		return id, nil
	}
	// Hash collision with an earlier name: fall back to the scan.
	for i := range reg.descs {
		if reg.descs[i].name == name {
			return ComponentID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
}

// Component returns the descriptor for id. It panics if id is not registered.
func (s *Storage) Component(id ComponentID) Component {
	return s.components.descs[id]
}

// Components returns a copy of all descriptors in ID order.
func (s *Storage) Components() []Component {
	return append([]Component(nil), s.components.descs...)
}

// NumComponents returns the number of registered components.
func (s *Storage) NumComponents() int {
	return len(s.components.descs)
}

// descriptor validates id and returns its descriptor.
func (reg *componentRegistry) descriptor(id ComponentID) (*Component, error) {
	if int(id) >= len(reg.descs) {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownComponent, id)
	}
	return &reg.descs[id], nil
}

// typed validates id and checks it was registered for T.
func typed[T any](reg *componentRegistry, id ComponentID) (*Component, error) {
	c, err := reg.descriptor(id)
	if err != nil {
		return nil, err
	}
	if t := reflect.TypeFor[T](); t != c.typ {
		return nil, fmt.Errorf("%w: component %q (%d) holds %s, not %s", ErrTypeMismatch, c.name, id, c.typ, t)
	}
	return c, nil
}

// offset returns the byte offset of component c in a buffer holding the
// components in present. The first cacheSize components are a single table
// read; the rest add the sizes of present components in [cacheSize, c).
func (reg *componentRegistry) offset(present bitmask64, c ComponentID) int {
	off := reg.offsets.at(present.below(c) & cacheMask)
	for i := ComponentID(cacheSize); i < c; i++ {
		if present.containsBit(i) {
			off += reg.descs[i].size
		}
	}
	return off
}

// boxIndex returns the placeholder slot of boxed component c in a record
// holding the components in present.
func (reg *componentRegistry) boxIndex(present bitmask64, c ComponentID) int {
	return (present & reg.boxed).below(c).count()
}

// isFlat applies the flatness policy to T.
func isFlat[T any]() bool {
	t := reflect.TypeFor[T]()
	pointers := hasPointers(t)
	var zero T
	if p, ok := any(zero).(LayoutPolicy); ok {
		switch p.Layout() {
		case LayoutFlat:
			if pointers {
				panic(fmt.Sprintf("packstore: %s contains pointers and cannot use LayoutFlat", t))
			}
			return true
		case LayoutBoxed:
			return false
		}
	}
	return !pointers
}

// hasPointers reports whether values of t contain anything the garbage
// collector has to trace.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
