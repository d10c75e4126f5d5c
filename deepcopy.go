package packstore

import (
	"reflect"
	"unsafe"
)

// deepCopy returns a copy of *v that shares no mutable memory with it.
// Pointers reached more than once map to the same copy, so cycles and
// aliasing inside the value are preserved.
func deepCopy[T any](v *T) T {
	var out T
	src := reflect.ValueOf(v).Elem()
	if !hasPointers(src.Type()) {
		return *v
	}
	var c copier
	c.copy(reflect.ValueOf(&out).Elem(), src)
	return out
}

type copier struct {
	ptrs map[pointerKey]reflect.Value
}

// pointerKey identifies a pointer by address and type. Distinct zero-size
// values may share an address.
type pointerKey struct {
	addr unsafe.Pointer
	typ  reflect.Type
}

// copy deep-copies src into dst. dst must be settable.
func (c *copier) copy(dst, src reflect.Value) {
	t := src.Type()
	if !hasPointers(t) {
		dst.Set(src)
		return
	}
	switch t.Kind() {
	case reflect.Pointer:
		if src.IsNil() {
			return
		}
		key := pointerKey{src.UnsafePointer(), t}
		if p, ok := c.ptrs[key]; ok {
			dst.Set(p)
			return
		}
		p := reflect.New(t.Elem())
		if c.ptrs == nil {
			c.ptrs = make(map[pointerKey]reflect.Value)
		}
		c.ptrs[key] = p
		c.copy(p.Elem(), src.Elem())
		dst.Set(p)
	case reflect.Slice:
		if src.IsNil() {
			return
		}
		s := reflect.MakeSlice(t, src.Len(), src.Cap())
		for i := range src.Len() {
			c.copy(s.Index(i), src.Index(i))
		}
		dst.Set(s)
	case reflect.Array:
		src = addressable(src)
		for i := range src.Len() {
			c.copy(dst.Index(i), src.Index(i))
		}
	case reflect.Map:
		if src.IsNil() {
			return
		}
		m := reflect.MakeMapWithSize(t, src.Len())
		it := src.MapRange()
		for it.Next() {
			e := reflect.New(t.Elem()).Elem()
			c.copy(e, it.Value())
			m.SetMapIndex(it.Key(), e)
		}
		dst.Set(m)
	case reflect.Struct:
		src = addressable(src)
		for i := range src.NumField() {
			c.copy(unexported(dst.Field(i)), unexported(src.Field(i)))
		}
	case reflect.Interface:
		if src.IsNil() {
			return
		}
		e := reflect.New(src.Elem().Type()).Elem()
		c.copy(e, src.Elem())
		dst.Set(e)
	default:
		// Strings are immutable; channels, funcs and unsafe pointers are shared.
		dst.Set(src)
	}
}

// addressable returns v itself when it is addressable, otherwise a copy that
// is.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	a := reflect.New(v.Type()).Elem()
	a.Set(v)
	return a
}

// unexported lifts the read-only restriction reflect puts on unexported
// struct fields. v must be addressable.
func unexported(v reflect.Value) reflect.Value {
	if v.CanSet() {
		return v
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}
