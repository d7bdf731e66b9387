package engine

import (
	"iter"
	"slices"
)

type Scene struct {
	Name        string
	GameObjects []*GameObject
	uidMap      map[uint64]*GameObject
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:        name,
		GameObjects: make([]*GameObject, 0),
		uidMap:      make(map[uint64]*GameObject),
	}
}

// AddGameObject adds a root object and indexes its whole subtree.
func (s *Scene) AddGameObject(g *GameObject) {
	s.GameObjects = append(s.GameObjects, g)
	s.index(g)
}

func (s *Scene) index(g *GameObject) {
	if s.uidMap == nil {
		s.uidMap = make(map[uint64]*GameObject)
	}
	g.Scene = s
	s.uidMap[g.UID] = g
	for _, child := range g.Children {
		s.index(child)
	}
}

func (s *Scene) unindex(g *GameObject) {
	delete(s.uidMap, g.UID)
	for _, child := range g.Children {
		s.unindex(child)
	}
}

func (s *Scene) RemoveGameObject(g *GameObject) {
	for i, obj := range s.GameObjects {
		if obj == g {
			s.GameObjects = append(s.GameObjects[:i], s.GameObjects[i+1:]...)
			break
		}
	}
	s.unindex(g)
}

// Destroy removes g from the scene and marks its subtree destroyed.
func (s *Scene) Destroy(g *GameObject) {
	if g.Parent != nil {
		g.Parent.RemoveChild(g)
	}
	s.RemoveGameObject(g)
	g.Destroy()
}

// FindByUID is an O(1) lookup over every indexed object, children included.
func (s *Scene) FindByUID(uid uint64) *GameObject {
	return s.uidMap[uid]
}

// FindByName searches roots first, then descendants depth-first.
func (s *Scene) FindByName(name string) *GameObject {
	for g := range s.All() {
		if g.Name == name {
			return g
		}
	}
	return nil
}

func (s *Scene) FindByTag(tag string) []*GameObject {
	var result []*GameObject
	for g := range s.All() {
		if g.HasTag(tag) {
			result = append(result, g)
		}
	}
	return result
}

// Roots returns a copy of the top-level objects.
func (s *Scene) Roots() []*GameObject {
	return slices.Clone(s.GameObjects)
}

// All yields every object in the scene, roots before their descendants.
// It is not random-access: reaching the Nth object walks from the start.
func (s *Scene) All() iter.Seq[*GameObject] {
	return func(yield func(*GameObject) bool) {
		var walk func(g *GameObject) bool
		walk = func(g *GameObject) bool {
			if !yield(g) {
				return false
			}
			for _, child := range g.Children {
				if !walk(child) {
					return false
				}
			}
			return true
		}
		for _, g := range s.GameObjects {
			if !walk(g) {
				return
			}
		}
	}
}

// Count returns the number of indexed objects.
func (s *Scene) Count() int {
	return len(s.uidMap)
}

func (s *Scene) Start() {
	for _, g := range s.GameObjects {
		g.Start()
	}
}

func (s *Scene) Update(deltaTime float32) {
	for _, g := range s.GameObjects {
		g.Update(deltaTime)
	}
}
