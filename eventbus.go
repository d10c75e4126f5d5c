package packstore

import "reflect"

// MaxEventTypes is the number of distinct event types one EventBus can carry.
const MaxEventTypes = 256

// EntityCreated is published after NewEntity, CloneEntity and Make (when Make
// actually creates the entity). The entity exists and is empty, or for clones
// holds the copied components.
type EntityCreated struct {
	Entity Entity
}

// EntityDeleted is published by DeleteEntity before the entity's record is
// destroyed, so handlers can still read its components.
type EntityDeleted struct {
	Entity Entity
}

// EventBus is a synchronous, typed publish/subscribe hub. The Storage uses
// one to deliver its lifecycle hooks; callers may publish their own event
// types on the same bus.
//
// Like the Storage it is not safe for concurrent use.
type EventBus struct {
	eventTypeMap    map[reflect.Type]uint8
	handlers        [MaxEventTypes][]any
	nextEventTypeID int
}

// NewEventBus returns an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers handler for events of type T. Handlers run in
// subscription order.
func Subscribe[T any](bus *EventBus, handler func(T)) {
	id := bus.getEventTypeID(reflect.TypeFor[T]())
	if cap(bus.handlers[id]) == 0 {
		bus.handlers[id] = make([]any, 0, 4)
	}
	bus.handlers[id] = append(bus.handlers[id], handler)
}

// Publish delivers event to every handler subscribed to T. It does not
// allocate.
func Publish[T any](bus *EventBus, event T) {
	if bus == nil || bus.eventTypeMap == nil {
		return
	}
	id, ok := bus.eventTypeMap[reflect.TypeFor[T]()]
	if !ok {
		return
	}
	for _, h := range bus.handlers[id] {
		h.(func(T))(event)
	}
}

// Subscribers returns the number of handlers subscribed to T.
func Subscribers[T any](bus *EventBus) int {
	id, ok := bus.eventTypeMap[reflect.TypeFor[T]()]
	if !ok {
		return 0
	}
	return len(bus.handlers[id])
}

func (bus *EventBus) getEventTypeID(t reflect.Type) uint8 {
	if bus.eventTypeMap == nil {
		bus.eventTypeMap = make(map[reflect.Type]uint8)
	}
	if id, ok := bus.eventTypeMap[t]; ok {
		return id
	}
	if bus.nextEventTypeID >= MaxEventTypes {
		panic("packstore: too many event types")
	}
	id := uint8(bus.nextEventTypeID)
	bus.nextEventTypeID++
	bus.eventTypeMap[t] = id
	return id
}
