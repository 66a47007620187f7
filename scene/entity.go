package scene

import "fmt"

// EntityID is a generation-checked handle to an entity. The low 32 bits hold
// the slot index and the high 32 bits the slot generation. The zero value
// never refers to a live entity.
type EntityID uint64

// NoEntity is the zero EntityID.
const NoEntity EntityID = 0

func newEntityID(index, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

// Index returns the store slot referenced by this id.
func (id EntityID) Index() uint32 {
	return uint32(id)
}

// Generation returns the slot generation this id was issued for.
func (id EntityID) Generation() uint32 {
	return uint32(id >> 32)
}

func (id EntityID) String() string {
	if id == NoEntity {
		return "entity(none)"
	}
	return fmt.Sprintf("entity(%d:%d)", id.Index(), id.Generation())
}

// Entity is a named container for a fixed set of optional components.
// Entities reference each other by EntityID only.
type Entity struct {
	ID   EntityID
	Name string

	Transform Transform

	// Optional components; nil when absent.
	Collider *Collider
	Renderer *MeshRenderer
}

type entitySlot struct {
	generation uint32
	entity     *Entity
}

// EntityStore owns all scene entities. Destroyed slots are recycled and their
// generation is bumped so that stale ids fail lookups.
type EntityStore struct {
	slots    []entitySlot
	freeList []uint32
	live     int
}

// Create a new entity with an identity transform.
func (s *EntityStore) Create(name string) *Entity {
	var index uint32
	if n := len(s.freeList); n > 0 {
		index = s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
	} else {
		index = uint32(len(s.slots))
		s.slots = append(s.slots, entitySlot{})
	}

	slot := &s.slots[index]
	slot.generation++
	slot.entity = &Entity{
		ID:        newEntityID(index, slot.generation),
		Name:      name,
		Transform: NewTransform(),
	}
	s.live++
	return slot.entity
}

// Get looks up a live entity. It returns false if the id is unknown or has
// been destroyed.
func (s *EntityStore) Get(id EntityID) (*Entity, bool) {
	index := id.Index()
	if id == NoEntity || int(index) >= len(s.slots) {
		return nil, false
	}

	slot := s.slots[index]
	if slot.entity == nil || slot.generation != id.Generation() {
		return nil, false
	}
	return slot.entity, true
}

// Destroy an entity. Destroying an unknown or stale id is a no-op that
// returns false.
func (s *EntityStore) Destroy(id EntityID) bool {
	if _, ok := s.Get(id); !ok {
		return false
	}

	index := id.Index()
	s.slots[index].entity = nil
	s.freeList = append(s.freeList, index)
	s.live--
	return true
}

// Find returns the first live entity with the given name.
func (s *EntityStore) Find(name string) (*Entity, bool) {
	for _, slot := range s.slots {
		if slot.entity != nil && slot.entity.Name == name {
			return slot.entity, true
		}
	}
	return nil, false
}

// Each invokes fn for every live entity in slot order.
func (s *EntityStore) Each(fn func(*Entity)) {
	for _, slot := range s.slots {
		if slot.entity != nil {
			fn(slot.entity)
		}
	}
}

// Len returns the number of live entities.
func (s *EntityStore) Len() int {
	return s.live
}
