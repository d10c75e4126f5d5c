// Package packstore is an in-memory entity/component store.
//
// Every entity owns one packed byte buffer holding its flat components back to
// back in ascending component-ID order, plus one placeholder slot per boxed
// component. A 64-bit presence mask says which components are there, and an
// offset cache over the first 12 registered components turns the byte offset
// of a component into a single table read.
//
// Features:
//   - Up to 64 component types per Storage, looked up by ID or name.
//   - Flat (pointer-free) components stored as raw bytes; everything else
//     boxed behind a Placeholder with explicit construct/destroy discipline.
//   - Per-component dirty tracking.
//   - ForEach and Filter passes that tolerate deleting the visited entity.
//   - A self-describing binary encoding of one entity.
//
// A Storage is not safe for concurrent use.
package packstore

import (
	"fmt"
	"iter"
	"slices"

	"go.uber.org/zap"
)

const defaultInitialCapacity = 1024

// Storage ties entities and components together.
type Storage struct {
	components componentRegistry
	index      map[Entity]int // entity -> position in records
	records    []record
	events     *EventBus
	log        *zap.Logger
	nextID     Entity
	closed     bool
}

// Option configures a Storage.
type Option func(*Storage)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Storage) {
		if l != nil {
			s.log = l
		}
	}
}

// WithInitialCapacity preallocates room for n entities.
func WithInitialCapacity(n int) Option {
	return func(s *Storage) {
		if n > 0 {
			s.index = make(map[Entity]int, n)
			s.records = make([]record, 0, n)
		}
	}
}

// WithEventBus publishes lifecycle events on bus instead of a private one.
func WithEventBus(bus *EventBus) Option {
	return func(s *Storage) {
		if bus != nil {
			s.events = bus
		}
	}
}

// New creates an empty Storage.
func New(opts ...Option) *Storage {
	s := &Storage{
		index:   make(map[Entity]int, defaultInitialCapacity),
		records: make([]record, 0, defaultInitialCapacity),
		events:  NewEventBus(),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events returns the bus carrying EntityCreated and EntityDeleted.
func (s *Storage) Events() *EventBus {
	return s.events
}

// Close destroys every boxed payload still held by an entity, then every
// component prototype. The Storage rejects further mutation afterwards.
// Closing twice is a no-op.
func (s *Storage) Close() {
	if s.closed {
		return
	}
	for i := range s.records {
		s.records[i].destroyBoxes()
	}
	for i := range s.components.descs {
		if p := s.components.descs[i].proto; p != nil {
			p.Destroy()
		}
	}
	s.log.Debug("storage closed", zap.Int("entities", len(s.records)))
	s.records = nil
	clear(s.index)
	s.closed = true
}

// Len returns the number of live entities.
func (s *Storage) Len() int {
	return len(s.records)
}

// Exists reports whether e is a live entity.
func (s *Storage) Exists(e Entity) bool {
	_, ok := s.index[e]
	return ok
}

// HasComponent reports whether e exists and has component c. Unregistered
// component IDs are never present.
func (s *Storage) HasComponent(e Entity, c ComponentID) bool {
	r := s.find(e)
	return r != nil && int(c) < len(s.components.descs) && r.present.containsBit(c)
}

// Entities yields every live entity. Deleting the entity being visited is
// allowed; any other structural change during the pass is not.
func (s *Storage) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		cur := s.cursor(0)
		for cur.next() {
			if !yield(cur.entity) {
				return
			}
		}
	}
}

// NewEntity allocates the next entity ID with an empty record and publishes
// EntityCreated.
func (s *Storage) NewEntity() Entity {
	s.mustBeOpen()
	e := s.nextID
	s.insert(e)
	s.nextID++
	Publish(s.events, EntityCreated{Entity: e})
	return e
}

// NewEntities allocates count empty entities in one go. No EntityCreated
// events are published. It panics when count is negative.
//
// Parameters:
//   - count: The number of entities to create. Zero yields an empty range.
//
// Returns:
//   - first: The first entity created.
//   - last: One past the last entity created, so the new entities are
//     [first, last).
func (s *Storage) NewEntities(count int) (first, last Entity) {
	s.mustBeOpen()
	if count < 0 {
		panic(fmt.Sprintf("packstore: cannot create %d entities", count))
	}
	first = s.nextID
	s.records = slices.Grow(s.records, count)
	for range count {
		s.insert(s.nextID)
		s.nextID++
	}
	s.log.Debug("entities allocated", zap.Uint32("first", uint32(first)), zap.Int("count", count))
	return first, s.nextID
}

// Make returns id, creating an empty entity for it if it does not exist yet.
// The ID counter moves past id so later allocations never collide with it.
// EntityCreated is published only when the entity is actually created.
func (s *Storage) Make(id Entity) Entity {
	s.mustBeOpen()
	if s.nextID <= id {
		s.nextID = id + 1
	}
	if _, ok := s.index[id]; ok {
		return id
	}
	s.insert(id)
	Publish(s.events, EntityCreated{Entity: id})
	return id
}

// CloneEntity creates a new entity holding a deep copy of e's components and
// dirty state. Boxed payloads of the two entities are independent afterwards.
func (s *Storage) CloneEntity(e Entity) (Entity, error) {
	if err := s.open(); err != nil {
		return 0, err
	}
	src := s.find(e)
	if src == nil {
		return 0, fmt.Errorf("%w: %d", ErrUnknownEntity, e)
	}
	id := s.nextID
	c := src.clone(id)
	s.index[id] = len(s.records)
	s.records = append(s.records, c)
	s.nextID++
	Publish(s.events, EntityCreated{Entity: id})
	return id, nil
}

// DeleteEntity publishes EntityDeleted, destroys e's boxed payloads and
// discards its record.
func (s *Storage) DeleteEntity(e Entity) error {
	if err := s.open(); err != nil {
		return err
	}
	if _, ok := s.index[e]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, e)
	}
	Publish(s.events, EntityDeleted{Entity: e})
	// A handler may have deleted it already.
	i, ok := s.index[e]
	if !ok {
		return nil
	}
	s.records[i].destroyBoxes()
	s.remove(i)
	return nil
}

// TryDeleteEntity is DeleteEntity reporting success instead of an error.
func (s *Storage) TryDeleteEntity(e Entity) bool {
	return s.DeleteEntity(e) == nil
}

// CheckDirty reports whether any component of e changed since the dirty state
// was last cleared.
func (s *Storage) CheckDirty(e Entity) bool {
	r := s.find(e)
	return r != nil && r.dirty != 0
}

// CheckDirtyAndClear reports CheckDirty and clears all of e's dirty bits.
func (s *Storage) CheckDirtyAndClear(e Entity) bool {
	r := s.find(e)
	if r == nil {
		return false
	}
	dirty := r.dirty != 0
	r.dirty = 0
	return dirty
}

// CheckComponentDirty reports whether component c of e changed since its
// dirty bit was last cleared.
func (s *Storage) CheckComponentDirty(e Entity, c ComponentID) bool {
	r := s.find(e)
	return r != nil && r.dirty.containsBit(c)
}

// CheckComponentDirtyAndClear reports CheckComponentDirty and clears the bit.
func (s *Storage) CheckComponentDirtyAndClear(e Entity, c ComponentID) bool {
	r := s.find(e)
	if r == nil {
		return false
	}
	dirty := r.dirty.containsBit(c)
	r.dirty.unset(c)
	return dirty
}

// DirtyMask returns e's dirty bits, bit i standing for component i.
func (s *Storage) DirtyMask(e Entity) uint64 {
	if r := s.find(e); r != nil {
		return uint64(r.dirty)
	}
	return 0
}

// PresenceMask returns e's presence bits, bit i standing for component i.
func (s *Storage) PresenceMask(e Entity) uint64 {
	if r := s.find(e); r != nil {
		return uint64(r.present)
	}
	return 0
}

func (s *Storage) find(e Entity) *record {
	i, ok := s.index[e]
	if !ok {
		return nil
	}
	return &s.records[i]
}

// lookup is find for operations that report errors.
func (s *Storage) lookup(e Entity) (*record, error) {
	if s.closed {
		return nil, ErrClosed
	}
	r := s.find(e)
	if r == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEntity, e)
	}
	return r, nil
}

func (s *Storage) insert(e Entity) {
	s.index[e] = len(s.records)
	s.records = append(s.records, record{id: e})
}

// remove swaps the last record into position i and shrinks the slice.
func (s *Storage) remove(i int) {
	e := s.records[i].id
	last := len(s.records) - 1
	if i != last {
		s.records[i] = s.records[last]
		s.index[s.records[i].id] = i
	}
	s.records[last] = record{}
	s.records = s.records[:last]
	delete(s.index, e)
}

func (s *Storage) open() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *Storage) mustBeOpen() {
	if s.closed {
		panic(ErrClosed)
	}
}
