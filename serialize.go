package packstore

import (
	"encoding/binary"
	"fmt"

	"go.uber.org/zap"
)

// headerSize is the length of the presence mask that starts every encoded
// entity.
const headerSize = 8

// Serialize appends the encoding of entity e to dst.
//
// The encoding is the 64-bit presence mask (little-endian) followed by the
// components in ascending ID order. Runs of consecutive flat components are
// copied from the packed buffer in one go; each boxed component is written by
// its codec. There is no version field and no checksum.
//
// Parameters:
//   - e: The entity to encode.
//   - dst: The buffer to append to; may be nil.
//
// Returns:
//   - dst extended with the encoding. On error dst is returned with its
//     original length.
//   - ErrSerializationNotImplemented when a boxed component has no codec.
func (s *Storage) Serialize(e Entity, dst []byte) ([]byte, error) {
	r, err := s.lookup(e)
	if err != nil {
		return dst, err
	}
	start := len(dst)
	dst = binary.LittleEndian.AppendUint64(dst, uint64(r.present))

	descs := s.components.descs
	first, last := 0, 0 // pending flat run in r.data
	box := 0
	for c := range descs {
		if !r.present.containsBit(ComponentID(c)) {
			continue
		}
		if descs[c].flat {
			last += descs[c].size
			continue
		}
		dst = append(dst, r.data[first:last]...)
		dst, err = r.boxes[box].Serialize(dst)
		if err != nil {
			return dst[:start], fmt.Errorf("serialize entity %d component %q: %w", e, descs[c].name, err)
		}
		box++
		first = last
	}
	if last != len(r.data) {
		panic(fmt.Sprintf("packstore: entity %d buffer holds %d bytes, presence mask accounts for %d", e, len(r.data), last))
	}
	return append(dst, r.data[first:last]...), nil
}

// Deserialize replaces the components of entity e with the ones encoded in
// src, which must hold exactly one encoded entity. On success every component
// that was present before or after is marked dirty. On failure e is left
// unchanged and any payloads constructed during decoding are destroyed.
func (s *Storage) Deserialize(e Entity, src []byte) error {
	r, err := s.lookup(e)
	if err != nil {
		return err
	}
	data, boxes, present, err := s.decode(src)
	if err != nil {
		s.log.Debug("deserialize failed", zap.Uint32("entity", uint32(e)), zap.Error(err))
		return fmt.Errorf("deserialize entity %d: %w", e, err)
	}
	r.destroyBoxes()
	r.dirty |= r.present | present
	r.present = present
	r.data = data
	r.boxes = boxes
	return nil
}

func (s *Storage) decode(src []byte) (data []byte, boxes []Placeholder, present bitmask64, err error) {
	if len(src) < headerSize {
		return nil, nil, 0, fmt.Errorf("%w: %d bytes, header needs %d", ErrMalformedBuffer, len(src), headerSize)
	}
	present = bitmask64(binary.LittleEndian.Uint64(src))
	if unknown := present &^ s.components.all; unknown != 0 {
		return nil, nil, 0, fmt.Errorf("%w: unregistered components in mask %#x", ErrMalformedBuffer, uint64(unknown))
	}
	defer func() {
		if err != nil {
			for _, b := range boxes {
				b.Destroy()
			}
			boxes = nil
		}
	}()

	descs := s.components.descs
	data = make([]byte, 0, len(src)-headerSize)
	first := headerSize
	last := first
	for c := range descs {
		if !present.containsBit(ComponentID(c)) {
			continue
		}
		d := &descs[c]
		if d.flat {
			last += d.size
			if last > len(src) {
				return nil, boxes, 0, fmt.Errorf("%w: component %q needs %d bytes, have %d", ErrMalformedBuffer, d.name, d.size, len(src)-last+d.size)
			}
			continue
		}
		data = append(data, src[first:last]...)
		ph := d.proto.Clone()
		n, derr := ph.Deserialize(src[last:])
		if derr != nil {
			ph.Destroy()
			return nil, boxes, 0, fmt.Errorf("component %q: %w", d.name, derr)
		}
		last += n
		first = last
		boxes = append(boxes, ph.Relocate())
	}
	if last != len(src) {
		return nil, boxes, 0, fmt.Errorf("%w: %d trailing bytes", ErrMalformedBuffer, len(src)-last)
	}
	data = append(data, src[first:last]...)
	return data, boxes, present, nil
}
