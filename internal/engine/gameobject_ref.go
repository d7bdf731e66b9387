package engine

import "fmt"

// GameObjectRef is a serializable reference to a GameObject by UID.
// Inspectors treat it as a jump target rather than expanding it inline.
type GameObjectRef struct {
	UID uint64 // 0 = none
}

// RefTo returns a reference to g, or the empty reference for nil.
func RefTo(g *GameObject) GameObjectRef {
	if g == nil {
		return GameObjectRef{}
	}
	return GameObjectRef{UID: g.UID}
}

// Get resolves the reference. Empty, missing and destroyed targets all
// resolve to nil.
func (r GameObjectRef) Get(scene *Scene) *GameObject {
	if r.UID == 0 || scene == nil {
		return nil
	}
	g := scene.FindByUID(r.UID)
	if !g.Alive() {
		return nil
	}
	return g
}

// IsValid reports whether the reference points at something. It does not
// check that the target still exists.
func (r GameObjectRef) IsValid() bool {
	return r.UID != 0
}

func (r *GameObjectRef) Set(g *GameObject) {
	*r = RefTo(g)
}

func (r *GameObjectRef) Clear() {
	r.UID = 0
}

func (r GameObjectRef) String() string {
	if r.UID == 0 {
		return "none"
	}
	return fmt.Sprintf("#%d", r.UID)
}
