package ecs

import (
	"slices"
	"sync"

	"github.com/phanxgames/gizmo"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/component"
	"github.com/yohamta/donburi/features/events"
)

// NodeRefData links an entity to the editor node it describes.
type NodeRefData struct {
	NodeID uint32
}

// Transform component types. An entity carries only the components its
// node exposes; absent components are never written by the editor.
var (
	NodeRef  = donburi.NewComponentType[NodeRefData]()
	Position = donburi.NewComponentType[gizmo.Vec2]()
	Scale    = donburi.NewComponentType[gizmo.Vec2](gizmo.Vec2{X: 1, Y: 1})
	Rotation = donburi.NewComponentType[float64]()
	Skew     = donburi.NewComponentType[gizmo.Vec2]()
	Pivot    = donburi.NewComponentType[gizmo.Vec2]()
)

// TransformChangedEvent reports that a node's transform components were
// edited outside the editor.
type TransformChangedEvent struct {
	NodeID uint32
}

// TransformChanged is the Donburi event type for external transform edits.
// Store.Edit publishes it; Store.Flush delivers it to OnChange listeners.
var TransformChanged = events.NewEventType[TransformChangedEvent]()

// Store is a gizmo.ComponentStore backed by a Donburi world. Several Stores
// may share a world; each delivers every TransformChanged event in it.
type Store struct {
	world     donburi.World
	entities  map[uint32]donburi.Entity
	listeners []listener
	nextID    uint32
	closed    bool
}

type listener struct {
	id uint32
	fn func(nodeID uint32)
}

// NewStore creates a Store over world and subscribes to TransformChanged.
func NewStore(world donburi.World) *Store {
	s := &Store{
		world:    world,
		entities: make(map[uint32]donburi.Entity),
	}
	attach(s)
	return s
}

// worldHub holds the single TransformChanged subscription for a world and
// fans events out to its Stores. Donburi unsubscribes by function identity,
// so every Store on a world must share one handler.
type worldHub struct {
	stores []*Store
	fn     func(donburi.World, TransformChangedEvent)
}

var (
	hubsMu sync.Mutex
	hubs   = map[donburi.World]*worldHub{}
)

func attach(s *Store) {
	hubsMu.Lock()
	defer hubsMu.Unlock()
	h, ok := hubs[s.world]
	if !ok {
		h = &worldHub{}
		h.fn = func(_ donburi.World, ev TransformChangedEvent) {
			hubsMu.Lock()
			stores := slices.Clone(h.stores)
			hubsMu.Unlock()
			for _, st := range stores {
				st.dispatch(ev)
			}
		}
		hubs[s.world] = h
		TransformChanged.Subscribe(s.world, h.fn)
	}
	h.stores = append(h.stores, s)
}

func detach(s *Store) {
	hubsMu.Lock()
	defer hubsMu.Unlock()
	h, ok := hubs[s.world]
	if !ok {
		return
	}
	h.stores = slices.DeleteFunc(h.stores, func(st *Store) bool { return st == s })
	if len(h.stores) == 0 {
		TransformChanged.Unsubscribe(s.world, h.fn)
		delete(hubs, s.world)
	}
}

// World returns the underlying Donburi world.
func (s *Store) World() donburi.World {
	return s.world
}

// componentTypes returns the component types named by mask.
func componentTypes(mask gizmo.ComponentMask) []component.IComponentType {
	types := []component.IComponentType{NodeRef}
	if mask.Has(gizmo.CompPosition) {
		types = append(types, Position)
	}
	if mask.Has(gizmo.CompScale) {
		types = append(types, Scale)
	}
	if mask.Has(gizmo.CompRotation) {
		types = append(types, Rotation)
	}
	if mask.Has(gizmo.CompSkew) {
		types = append(types, Skew)
	}
	if mask.Has(gizmo.CompPivot) {
		types = append(types, Pivot)
	}
	return types
}

// Spawn creates an entity for nodeID carrying the components in mask, with
// their default values. An existing entity for the node is replaced.
func (s *Store) Spawn(nodeID uint32, mask gizmo.ComponentMask) donburi.Entity {
	s.Despawn(nodeID)
	entity := s.world.Create(componentTypes(mask)...)
	NodeRef.SetValue(s.world.Entry(entity), NodeRefData{NodeID: nodeID})
	s.entities[nodeID] = entity
	return entity
}

// Bind spawns an entity for n carrying mask and seeds it with n's current
// transform.
func (s *Store) Bind(n *gizmo.Node, mask gizmo.ComponentMask) donburi.Entity {
	entity := s.Spawn(n.ID, mask)
	s.SetTransformComponents(n.ID, gizmo.ComponentsFromTransform(n.Transform(), mask))
	return entity
}

// Despawn removes the entity for nodeID, if any.
func (s *Store) Despawn(nodeID uint32) {
	entity, ok := s.entities[nodeID]
	if !ok {
		return
	}
	delete(s.entities, nodeID)
	if s.world.Valid(entity) {
		s.world.Remove(entity)
	}
}

// Entity returns the entity bound to nodeID.
func (s *Store) Entity(nodeID uint32) (donburi.Entity, bool) {
	entity, ok := s.entities[nodeID]
	if !ok || !s.world.Valid(entity) {
		return 0, false
	}
	return entity, true
}

// entry returns the live entry for nodeID, or nil.
func (s *Store) entry(nodeID uint32) *donburi.Entry {
	entity, ok := s.Entity(nodeID)
	if !ok {
		return nil
	}
	return s.world.Entry(entity)
}

// TransformComponents reads the components the node's entity carries.
func (s *Store) TransformComponents(nodeID uint32) (gizmo.TransformComponents, bool) {
	entry := s.entry(nodeID)
	if entry == nil {
		return gizmo.TransformComponents{}, false
	}
	var c gizmo.TransformComponents
	if entry.HasComponent(Position) {
		c.Mask |= gizmo.CompPosition
		c.Position = Position.GetValue(entry)
	}
	if entry.HasComponent(Scale) {
		c.Mask |= gizmo.CompScale
		c.Scale = Scale.GetValue(entry)
	}
	if entry.HasComponent(Rotation) {
		c.Mask |= gizmo.CompRotation
		c.Rotation = Rotation.GetValue(entry)
	}
	if entry.HasComponent(Skew) {
		c.Mask |= gizmo.CompSkew
		c.Skew = Skew.GetValue(entry)
	}
	if entry.HasComponent(Pivot) {
		c.Mask |= gizmo.CompPivot
		c.Pivot = Pivot.GetValue(entry)
	}
	return c, true
}

// SetTransformComponents writes the components present both in c and on
// the entity. It does not publish TransformChanged.
func (s *Store) SetTransformComponents(nodeID uint32, c gizmo.TransformComponents) {
	entry := s.entry(nodeID)
	if entry == nil {
		return
	}
	if c.Mask.Has(gizmo.CompPosition) && entry.HasComponent(Position) {
		Position.SetValue(entry, c.Position)
	}
	if c.Mask.Has(gizmo.CompScale) && entry.HasComponent(Scale) {
		Scale.SetValue(entry, c.Scale)
	}
	if c.Mask.Has(gizmo.CompRotation) && entry.HasComponent(Rotation) {
		Rotation.SetValue(entry, c.Rotation)
	}
	if c.Mask.Has(gizmo.CompSkew) && entry.HasComponent(Skew) {
		Skew.SetValue(entry, c.Skew)
	}
	if c.Mask.Has(gizmo.CompPivot) && entry.HasComponent(Pivot) {
		Pivot.SetValue(entry, c.Pivot)
	}
}

// Edit writes components as an external system would and publishes
// TransformChanged. Listeners see the change on the next Flush.
func (s *Store) Edit(nodeID uint32, c gizmo.TransformComponents) {
	if s.entry(nodeID) == nil {
		return
	}
	s.SetTransformComponents(nodeID, c)
	TransformChanged.Publish(s.world, TransformChangedEvent{NodeID: nodeID})
}

// Flush delivers queued TransformChanged events.
func (s *Store) Flush() {
	TransformChanged.ProcessEvents(s.world)
}

// OnChange registers fn for external edits delivered by Flush.
func (s *Store) OnChange(fn func(nodeID uint32)) gizmo.Subscription {
	s.nextID++
	s.listeners = append(s.listeners, listener{id: s.nextID, fn: fn})
	return subscription{store: s, id: s.nextID}
}

func (s *Store) dispatch(ev TransformChangedEvent) {
	if s.closed {
		return
	}
	for _, l := range append([]listener(nil), s.listeners...) {
		l.fn(ev.NodeID)
	}
}

func (s *Store) removeListener(id uint32) {
	for i := range s.listeners {
		if s.listeners[i].id == id {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Close stops delivering events to listeners.
func (s *Store) Close() {
	if s.closed {
		return
	}
	s.closed = true
	detach(s)
	s.listeners = nil
}

type subscription struct {
	store *Store
	id    uint32
}

func (sub subscription) Remove() {
	sub.store.removeListener(sub.id)
}

var _ gizmo.ComponentStore = (*Store)(nil)
