package packstore

import "errors"

var (
	ErrUnknownEntity               = errors.New("packstore: unknown entity")
	ErrUnknownComponent            = errors.New("packstore: unknown component")
	ErrMissingComponent            = errors.New("packstore: entity does not have component")
	ErrTypeMismatch                = errors.New("packstore: component type mismatch")
	ErrSerializationNotImplemented = errors.New("packstore: serialization not implemented")
	ErrMalformedBuffer             = errors.New("packstore: malformed buffer")
	ErrPayloadTooLarge             = errors.New("packstore: payload too large for length prefix")
	ErrClosed                      = errors.New("packstore: storage is closed")
	ErrInvalidConfig               = errors.New("packstore: invalid config")
)
