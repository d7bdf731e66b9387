package refchain

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"scenedebug/internal/components"
	"scenedebug/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustChain(t *testing.T, segs ...Segment) *Chain {
	t.Helper()
	c, err := From(DefaultMaxDepth, segs...)
	require.NoError(t, err)
	return c
}

func TestIndexPastEndIsAbsent(t *testing.T) {
	root := engine.NewGameObject("Root")
	for range 3 {
		root.AddChild(engine.NewGameObject("child"))
	}

	c := mustChain(t, GameObject(root), Field("Children"), Item(5))
	_, ok := c.Evaluate()
	assert.False(t, ok)

	_, err := c.Resolve()
	assert.ErrorIs(t, err, ErrOutOfRange)

	c = mustChain(t, GameObject(root), Field("Children"), Item(2))
	v, ok := c.Evaluate()
	require.True(t, ok)
	assert.Same(t, root.Children[2], v.Interface())
}

func TestAddLeavesReceiverUntouched(t *testing.T) {
	g := engine.NewGameObject("Player")
	base := mustChain(t, GameObject(g), Field("Transform"))
	id := base.UniqueID()

	pos, err := base.Add(Field("Position"))
	require.NoError(t, err)
	rot, err := base.Add(Field("Rotation"))
	require.NoError(t, err)

	assert.Equal(t, 2, base.Len())
	assert.Equal(t, id, base.UniqueID())
	assert.Equal(t, 3, pos.Len())
	assert.NotEqual(t, pos.UniqueID(), rot.UniqueID())
	last, _ := pos.Last()
	assert.Equal(t, "Position", last.Name)
}

func TestMaxDepth(t *testing.T) {
	c := New(3)
	var err error
	for _, s := range []Segment{Field("a"), Field("b"), Field("c")} {
		require.True(t, c.CheckDepth())
		c, err = c.Add(s)
		require.NoError(t, err)
	}
	assert.False(t, c.CheckDepth())
	_, err = c.Add(Field("d"))
	assert.ErrorIs(t, err, ErrMaxDepth)

	assert.Equal(t, DefaultMaxDepth, New(0).MaxDepth())
}

func TestUniqueIDMatchesEquality(t *testing.T) {
	g := engine.NewGameObject("Box")
	a := mustChain(t, GameObject(g), Field("Tags"), Item(1))
	b := mustChain(t, GameObject(g), Field("Tags"), Item(1))
	c := mustChain(t, GameObject(g), Field("Tags"), Item(2))
	d := mustChain(t, GameObject(g), Property("Tags"), Item(1))

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.UniqueID(), b.UniqueID())
	for _, other := range []*Chain{c, d} {
		assert.False(t, a.Equal(other))
		assert.NotEqual(t, a.UniqueID(), other.UniqueID())
	}

	other := engine.NewGameObject("Box")
	e := mustChain(t, GameObject(other), Field("Tags"), Item(1))
	assert.False(t, a.Equal(e))
	assert.NotEqual(t, a.UniqueID(), e.UniqueID())
}

func TestUniqueIDEscapesSeparators(t *testing.T) {
	a := mustChain(t, MapEntry("a/b"))
	b := mustChain(t, MapEntry("a"), MapEntry("b"))
	assert.NotEqual(t, a.UniqueID(), b.UniqueID())

	x := mustChain(t, Field(`a\`), Field("b"))
	y := mustChain(t, Field(`a\/b`))
	assert.NotEqual(t, x.UniqueID(), y.UniqueID())
}

type treeNode struct {
	Name     string
	Children []*treeNode
	ByName   map[string]*treeNode
}

func randomTree(r *rand.Rand, depth int) *treeNode {
	n := &treeNode{Name: "n", ByName: map[string]*treeNode{}}
	if depth == 0 {
		return n
	}
	for i := range r.Intn(4) + 1 {
		child := randomTree(r, depth-1)
		child.Name = string(rune('a' + i))
		n.Children = append(n.Children, child)
		n.ByName[child.Name] = child
	}
	return n
}

func TestEvaluateMatchesManualWalk(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for range 50 {
		root := randomTree(r, 5)
		c := mustChain(t, GameObject(root))
		want := root
		for len(want.Children) > 0 {
			i := r.Intn(len(want.Children))
			var err error
			if r.Intn(2) == 0 {
				c, err = c.Add(Field("Children"))
				require.NoError(t, err)
				c, err = c.Add(Item(i))
			} else {
				c, err = c.Add(Field("ByName"))
				require.NoError(t, err)
				c, err = c.Add(MapEntry(want.Children[i].Name))
			}
			require.NoError(t, err)
			want = want.Children[i]
		}

		v, ok := c.Evaluate()
		require.True(t, ok, c.String())
		assert.Same(t, want, v.Interface())
	}
}

func TestStaleComponentAndObject(t *testing.T) {
	g := engine.NewGameObject("Ball")
	rb := components.NewRigidbody()
	g.AddComponent(rb)
	c := mustChain(t, GameObject(g), Component(rb), Field("Mass"))

	v, ok := c.Evaluate()
	require.True(t, ok)
	assert.EqualValues(t, 1, v.Float())

	g.RemoveComponent(rb)
	_, err := c.Resolve()
	assert.ErrorIs(t, err, ErrStale)

	c = mustChain(t, GameObject(g), Field("Name"))
	g.Destroy()
	_, err = c.Resolve()
	assert.ErrorIs(t, err, ErrStale)
}

type flaky struct {
	n int
}

func (f *flaky) Count() int { return f.n }
func (f *flaky) Broken() (int, error) { return 0, errors.New("nope") }
func (f *flaky) Explodes() int { panic("boom") }
func (f *flaky) NeedsArg(x int) int { return x }
func (f flaky) Doubled() int { return f.n * 2 }
func (f *flaky) Items() func(func(int) bool) {
	return func(yield func(int) bool) {
		for i := range f.n {
			if !yield(i * 10) {
				return
			}
		}
	}
}

func TestProperties(t *testing.T) {
	f := &flaky{n: 3}
	root := GameObject(f)

	v, ok := mustChain(t, root, Property("Count")).Evaluate()
	require.True(t, ok)
	assert.EqualValues(t, 3, v.Int())

	v, ok = mustChain(t, root, Property("Doubled")).Evaluate()
	require.True(t, ok)
	assert.EqualValues(t, 6, v.Int())

	for _, name := range []string{"Broken", "Explodes"} {
		_, err := mustChain(t, root, Property(name)).Resolve()
		assert.ErrorIs(t, err, ErrGetter, name)
	}
	for _, name := range []string{"NeedsArg", "Missing"} {
		_, err := mustChain(t, root, Property(name)).Resolve()
		assert.ErrorIs(t, err, ErrNoMember, name)
	}
}

func TestIteratorItemsAreRewalked(t *testing.T) {
	f := &flaky{n: 3}
	c := mustChain(t, GameObject(f), Property("Items"), Item(2))

	v, ok := c.Evaluate()
	require.True(t, ok)
	assert.EqualValues(t, 20, v.Int())

	f.n = 2
	_, err := c.Resolve()
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestSceneIteratorAndSpecial(t *testing.T) {
	s := engine.NewScene("main")
	parent := engine.NewGameObject("Parent")
	parent.Transform.Position = rl.Vector3{X: 10}
	child := engine.NewGameObject("Child")
	child.Transform.Position = rl.Vector3{X: 1}
	parent.AddChild(child)
	s.AddGameObject(parent)

	v, ok := mustChain(t, GameObject(s), Property("All"), Item(1)).Evaluate()
	require.True(t, ok)
	assert.Same(t, child, v.Interface())

	v, ok = mustChain(t, GameObject(child), Special("world_position")).Evaluate()
	require.True(t, ok)
	assert.Equal(t, float32(11), v.Interface().(rl.Vector3).X)

	_, err := mustChain(t, GameObject(child), Special("nothing")).Resolve()
	assert.ErrorIs(t, err, ErrNoMember)
}

func TestNilHop(t *testing.T) {
	mr := &components.MeshRenderer{}
	engine.NewGameObject("Floor").AddComponent(mr)
	_, err := mustChain(t, Component(mr), Field("Material"), Field("Color")).Resolve()
	assert.ErrorIs(t, err, ErrNilHop)
}

func TestSet(t *testing.T) {
	g := engine.NewGameObject("Player")
	rb := components.NewRigidbody()
	rb.Velocity = rl.Vector3{X: 3, Y: 4}
	g.AddComponent(rb)
	mat := components.NewMaterial("metal")
	mat.Properties["_Gloss"] = 0.1
	g.AddComponent(components.NewMeshRenderer("cube", nil, mat))

	x := mustChain(t, GameObject(g), Field("Transform"), Field("Position"), Field("X"))
	require.NoError(t, x.Set(2.5))
	assert.Equal(t, float32(2.5), g.Transform.Position.X)

	gloss := mustChain(t, GameObject(mat), Field("Properties"), MapEntry("_Gloss"))
	require.NoError(t, gloss.Set(0.75))
	assert.Equal(t, float32(0.75), mat.Properties["_Gloss"])

	tag := mustChain(t, GameObject(g), Field("Tags"))
	require.NoError(t, tag.Set([]string{"hero"}))
	require.NoError(t, mustChain(t, GameObject(g), Field("Tags"), Item(0)).Set("villain"))
	assert.Equal(t, []string{"villain"}, g.Tags)

	speed := mustChain(t, Component(rb), Property("Speed"))
	require.NoError(t, speed.Set(10))
	assert.Equal(t, float32(6), rb.Velocity.X)

	err := mustChain(t, GameObject(g), Field("destroyed")).Set(true)
	assert.ErrorIs(t, err, ErrNotSettable)

	err = mustChain(t, GameObject(g), Field("Name")).Set(42)
	assert.ErrorIs(t, err, ErrType)

	err = mustChain(t, GameObject(g), Special("world_position")).Set(rl.Vector3{})
	assert.ErrorIs(t, err, ErrNotSettable)

	assert.ErrorIs(t, New(0).Set(1), ErrEmpty)

	type counters struct {
		Hits  int
		Level uint8
		Ratio float32
	}
	tests := []struct {
		field string
		value any
		ok    bool
	}{
		{"Level", 255, true},
		{"Level", 300, false},
		{"Level", -1, false},
		{"Level", 7.0, true},
		{"Hits", 3.7, false},
		{"Hits", -12.0, true},
		{"Hits", uint64(math.MaxUint64), false},
		{"Ratio", 1e300, false},
		{"Ratio", 0.25, true},
	}
	for _, tt := range tests {
		cnt := &counters{}
		err := mustChain(t, GameObject(cnt), Field(tt.field)).Set(tt.value)
		if tt.ok {
			assert.NoError(t, err, "%s = %v", tt.field, tt.value)
			continue
		}
		assert.ErrorIs(t, err, ErrType, "%s = %v", tt.field, tt.value)
		assert.Equal(t, counters{}, *cnt, "rejected write leaves %s alone", tt.field)
	}
}

func TestStringAndReverse(t *testing.T) {
	g := engine.NewGameObject("Player")
	rb := components.NewRigidbody()
	g.AddComponent(rb)
	c := mustChain(t, GameObject(g), Component(rb), Field("Velocity"), Field("X"))

	assert.Equal(t, g.String()+":Rigidbody.Velocity.X", c.String())

	r := c.Reverse()
	segs := r.Segments()
	require.Len(t, segs, 4)
	assert.Equal(t, "X", segs[0].Name)
	assert.Equal(t, KindGameObject, segs[3].Kind)
	assert.False(t, r.Equal(c))
	assert.True(t, r.Reverse().Equal(c))

	p := c.Parent()
	assert.Equal(t, 3, p.Len())
	assert.True(t, p.Equal(mustChain(t, GameObject(g), Component(rb), Field("Velocity"))))
	assert.Nil(t, New(0).Parent())

	m := mustChain(t, MapEntry("k"), Item(3), Property("Len"), Special("x"))
	assert.Equal(t, `["k"][3].Len()@x`, m.String())
}
