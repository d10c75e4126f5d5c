package packstore

// Placeholder is the type-erased handle the Storage uses for boxed
// components. It lets the storage clone, serialize, move and destroy a value
// without knowing its concrete type.
type Placeholder interface {
	// Clone returns an independent deep copy.
	Clone() Placeholder
	// Serialize appends the encoding of the payload to dst.
	Serialize(dst []byte) ([]byte, error)
	// Deserialize replaces the payload with one decoded from the front of
	// src and reports how many bytes were consumed.
	Deserialize(src []byte) (int, error)
	// Relocate moves the payload into a new placeholder and leaves the
	// receiver in a moved-from state that Destroy treats as empty.
	Relocate() Placeholder
	// Destroy releases the payload. It is a no-op on a moved-from or already
	// destroyed placeholder.
	Destroy()
}

// Constructor is implemented by boxed payloads that want to observe being
// constructed inside a Storage: on registration (the prototype), Set, clone
// and deserialization.
type Constructor interface {
	Construct()
}

// Destroyer is implemented by boxed payloads that own resources. Destroy is
// called exactly once for every constructed payload: when it is overwritten,
// removed, its entity is deleted, or the Storage is closed.
type Destroyer interface {
	Destroy()
}

// Cloner lets a boxed type provide its own deep copy. Without it the value is
// copied field by field through reflection: slices, arrays, maps, pointers and
// interfaces are duplicated recursively; channels and funcs are shared.
type Cloner[T any] interface {
	Clone() T
}

// holder is the boxed wrapper for one value of type T.
type holder[T any] struct {
	value T
	live  bool
}

var _ Placeholder = (*holder[string])(nil)

// newHolder constructs a holder owning v.
func newHolder[T any](v T) *holder[T] {
	h := &holder[T]{value: v, live: true}
	if c, ok := any(&h.value).(Constructor); ok {
		c.Construct()
	}
	return h
}

// held returns the payload.
func (h *holder[T]) held() *T {
	return &h.value
}

func (h *holder[T]) Clone() Placeholder {
	return newHolder(cloneValue(&h.value))
}

func (h *holder[T]) Serialize(dst []byte) ([]byte, error) {
	c, err := lookupCodec[T]()
	if err != nil {
		return dst, err
	}
	return c.encode(dst, &h.value)
}

func (h *holder[T]) Deserialize(src []byte) (int, error) {
	c, err := lookupCodec[T]()
	if err != nil {
		return 0, err
	}
	n, err := c.decode(&h.value, src)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > len(src) {
		return 0, ErrMalformedBuffer
	}
	return n, nil
}

func (h *holder[T]) Relocate() Placeholder {
	moved := &holder[T]{value: h.value, live: h.live}
	var zero T
	h.value = zero
	h.live = false
	return moved
}

func (h *holder[T]) Destroy() {
	if !h.live {
		return
	}
	h.live = false
	if d, ok := any(&h.value).(Destroyer); ok {
		d.Destroy()
	}
	var zero T
	h.value = zero
}

// replace destroys the current payload and constructs v in its place.
func (h *holder[T]) replace(v T) {
	h.Destroy()
	h.value = v
	h.live = true
	if c, ok := any(&h.value).(Constructor); ok {
		c.Construct()
	}
}

func cloneValue[T any](v *T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return deepCopy(v)
}
