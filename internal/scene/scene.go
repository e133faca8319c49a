// Package scene stores shadow casters as entities in a donburi world and
// exposes them to the shadow engine as per-frame snapshots.
package scene

import (
	"fmt"
	"slices"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"

	"chosenoffset.com/shadowcast/internal/core/shadows"
	"chosenoffset.com/shadowcast/internal/render/lighting"
)

// Caster and Transform are the components every caster entity carries
var (
	Caster    = donburi.NewComponentType[shadows.Caster]()
	Transform = donburi.NewComponentType[shadows.Transform]()
)

// Invalidator receives explicit cache invalidations, usually a *shadows.Engine
type Invalidator interface {
	Invalidate(id shadows.CasterID)
}

// Scene is the host-side entity store for one shadow scene
type Scene struct {
	world       donburi.World
	query       *donburi.Query
	entities    map[shadows.CasterID]donburi.Entity
	nextID      shadows.CasterID
	lights      *lighting.Manager
	invalidator Invalidator
}

// New creates an empty scene using the given light registry
func New(lights *lighting.Manager) *Scene {
	if lights == nil {
		lights = lighting.NewManager()
	}
	return &Scene{
		world:    donburi.NewWorld(),
		query:    donburi.NewQuery(filter.Contains(Caster, Transform)),
		entities: make(map[shadows.CasterID]donburi.Entity),
		nextID:   1,
		lights:   lights,
	}
}

// SetInvalidator routes edits that the engine cannot detect by itself
// (shape changes, moves of static casters) to inv
func (s *Scene) SetInvalidator(inv Invalidator) {
	s.invalidator = inv
}

// LightManager returns the scene's light registry
func (s *Scene) LightManager() *lighting.Manager {
	return s.lights
}

// Len returns the number of casters
func (s *Scene) Len() int {
	return len(s.entities)
}

// AddCaster adds a caster entity. A zero ID is replaced by the next free ID.
func (s *Scene) AddCaster(c shadows.Caster, t shadows.Transform) (shadows.CasterID, error) {
	if c.ID == 0 {
		for s.has(s.nextID) {
			s.nextID++
		}
		c.ID = s.nextID
	}
	if s.has(c.ID) {
		return 0, fmt.Errorf("caster %d already exists", c.ID)
	}
	if c.ID >= s.nextID {
		s.nextID = c.ID + 1
	}
	c.Shape.Vertices = slices.Clone(c.Shape.Vertices)

	entity := s.world.Create(Caster, Transform)
	entry := s.world.Entry(entity)
	Caster.SetValue(entry, c)
	Transform.SetValue(entry, t)
	s.entities[c.ID] = entity
	// A caster removed and re-added under the same ID may still have a record
	s.invalidate(c.ID)
	return c.ID, nil
}

// RemoveCaster removes a caster. The engine forgets it on its next update.
func (s *Scene) RemoveCaster(id shadows.CasterID) bool {
	entity, ok := s.entities[id]
	if !ok {
		return false
	}
	s.world.Remove(entity)
	delete(s.entities, id)
	return true
}

// SetTransform moves a caster. Static casters are invalidated since the engine
// does not compare their transforms.
func (s *Scene) SetTransform(id shadows.CasterID, t shadows.Transform) bool {
	entry := s.entry(id)
	if entry == nil {
		return false
	}
	Transform.SetValue(entry, t)
	if Caster.Get(entry).IsStatic {
		s.invalidate(id)
	}
	return true
}

// UpdateCaster edits a caster's descriptor in place and invalidates it.
// The ID cannot be changed.
func (s *Scene) UpdateCaster(id shadows.CasterID, fn func(c *shadows.Caster)) bool {
	entry := s.entry(id)
	if entry == nil {
		return false
	}
	c := Caster.Get(entry)
	fn(c)
	c.ID = id
	s.invalidate(id)
	return true
}

// Get returns a caster's current snapshot
func (s *Scene) Get(id shadows.CasterID) (shadows.CasterSnapshot, bool) {
	entry := s.entry(id)
	if entry == nil {
		return shadows.CasterSnapshot{}, false
	}
	return shadows.CasterSnapshot{Caster: *Caster.Get(entry), Transform: *Transform.Get(entry)}, true
}

// Casters returns a snapshot of every caster ordered by ID
func (s *Scene) Casters() []shadows.CasterSnapshot {
	snaps := make([]shadows.CasterSnapshot, 0, len(s.entities))
	s.query.Each(s.world, func(entry *donburi.Entry) {
		snaps = append(snaps, shadows.CasterSnapshot{
			Caster:    *Caster.Get(entry),
			Transform: *Transform.Get(entry),
		})
	})
	slices.SortFunc(snaps, func(a, b shadows.CasterSnapshot) int {
		switch {
		case a.Caster.ID < b.Caster.ID:
			return -1
		case a.Caster.ID > b.Caster.ID:
			return 1
		}
		return 0
	})
	return snaps
}

// Lights returns the active lights
func (s *Scene) Lights() []shadows.Light {
	return s.lights.GetAllLights()
}

func (s *Scene) has(id shadows.CasterID) bool {
	_, ok := s.entities[id]
	return ok
}

func (s *Scene) entry(id shadows.CasterID) *donburi.Entry {
	entity, ok := s.entities[id]
	if !ok || !s.world.Valid(entity) {
		return nil
	}
	return s.world.Entry(entity)
}

func (s *Scene) invalidate(id shadows.CasterID) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(id)
	}
}
