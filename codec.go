package packstore

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"sync"
)

// EncodeFunc appends the encoding of v to dst and returns the extended slice.
type EncodeFunc[T any] func(dst []byte, v *T) ([]byte, error)

// DecodeFunc reconstructs v from the front of src and reports how many bytes
// it consumed. A src that ends before the value does must be reported as
// ErrMalformedBuffer.
type DecodeFunc[T any] func(v *T, src []byte) (int, error)

type codec[T any] struct {
	encode EncodeFunc[T]
	decode DecodeFunc[T]
}

var (
	codecsMu sync.RWMutex
	codecs   = make(map[reflect.Type]any)
)

func init() {
	RegisterCodec(appendString, decodeString)
	RegisterCodec(appendBytes, decodeBytes)
}

// RegisterCodec installs the serialize/deserialize pair used for boxed
// components of type T. Registering again for the same type replaces the
// previous pair. Flat components never consult the codec registry.
func RegisterCodec[T any](enc EncodeFunc[T], dec DecodeFunc[T]) {
	if enc == nil || dec == nil {
		panic(fmt.Sprintf("packstore: nil codec for %s", reflect.TypeFor[T]()))
	}
	codecsMu.Lock()
	codecs[reflect.TypeFor[T]()] = codec[T]{encode: enc, decode: dec}
	codecsMu.Unlock()
}

func lookupCodec[T any]() (codec[T], error) {
	t := reflect.TypeFor[T]()
	codecsMu.RLock()
	c, ok := codecs[t]
	codecsMu.RUnlock()
	if !ok {
		return codec[T]{}, fmt.Errorf("%w: %s", ErrSerializationNotImplemented, t)
	}
	return c.(codec[T]), nil
}

// AppendPrefixed appends b with a 2-byte little-endian length prefix. It is
// the encoding the built-in string and []byte codecs use and is exported for
// custom codecs of string-like payloads.
func AppendPrefixed(dst, b []byte) ([]byte, error) {
	return appendPrefixed(dst, b)
}

func appendPrefixed[S ~string | ~[]byte](dst []byte, b S) ([]byte, error) {
	if len(b) > math.MaxUint16 {
		return dst, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(b))
	}
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(b)))
	return append(dst, b...), nil
}

// ReadPrefixed reads a value written by AppendPrefixed from the front of src.
// The returned slice aliases src.
func ReadPrefixed(src []byte) ([]byte, int, error) {
	if len(src) < 2 {
		return nil, 0, fmt.Errorf("%w: length prefix needs 2 bytes, have %d", ErrMalformedBuffer, len(src))
	}
	n := int(binary.LittleEndian.Uint16(src))
	if len(src)-2 < n {
		return nil, 0, fmt.Errorf("%w: payload needs %d bytes, have %d", ErrMalformedBuffer, n, len(src)-2)
	}
	return src[2 : 2+n], 2 + n, nil
}

func appendString(dst []byte, v *string) ([]byte, error) {
	return appendPrefixed(dst, *v)
}

func decodeString(v *string, src []byte) (int, error) {
	b, n, err := ReadPrefixed(src)
	if err != nil {
		return 0, err
	}
	*v = string(b)
	return n, nil
}

func appendBytes(dst []byte, v *[]byte) ([]byte, error) {
	return AppendPrefixed(dst, *v)
}

func decodeBytes(v *[]byte, src []byte) (int, error) {
	b, n, err := ReadPrefixed(src)
	if err != nil {
		return 0, err
	}
	*v = append([]byte(nil), b...)
	return n, nil
}
