package script

import (
	"testing"

	"scenedebug/internal/components"
	"scenedebug/internal/engine"
	"scenedebug/internal/inspect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newREPL(t *testing.T) (*REPL, *inspect.Mutator, *components.Rigidbody) {
	t.Helper()
	s := engine.NewScene("script")
	g := engine.NewGameObject("Ball")
	rb := components.NewRigidbody()
	g.AddComponent(rb)
	s.AddGameObject(g)
	s.AddGameObject(engine.NewGameObject("Floor"))
	x := inspect.NewExplorer(s, inspect.NewState(inspect.MaxPageSize), nil, inspect.Options{MaxDepth: 32})
	m := inspect.NewMutator()
	r, err := New(x, m)
	require.NoError(t, err)
	return r, m, rb
}

func TestEvalExpressions(t *testing.T) {
	r, _, _ := newREPL(t)

	out, err := r.Eval("1 + 2")
	require.NoError(t, err)
	assert.Equal(t, "3", out)

	out, err = r.Eval(`scene.Find("Ball").Name`)
	require.NoError(t, err)
	assert.Equal(t, `"Ball"`, out)

	out, err = r.Eval("len(scene.Objects())")
	require.NoError(t, err)
	assert.Equal(t, "2", out)

	out, err = r.Eval("")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDeclarationsPersist(t *testing.T) {
	r, _, _ := newREPL(t)

	_, err := r.Eval("x := 20")
	require.NoError(t, err)
	out, err := r.Eval("x * 2")
	require.NoError(t, err)
	assert.Equal(t, "40", out)
}

func TestSetGoesThroughMutator(t *testing.T) {
	r, m, rb := newREPL(t)

	_, err := r.Eval(`scene.Set("Ball:Rigidbody.Mass", 4)`)
	require.NoError(t, err)
	assert.Equal(t, float32(4), rb.Mass)

	_, err = r.Eval(`scene.Set("Ball:Rigidbody.Velocity", "1,0,0")`)
	require.NoError(t, err)
	assert.Equal(t, float32(1), rb.Velocity.X)
	assert.Equal(t, 2, m.Len())

	_, err = m.Undo()
	require.NoError(t, err)
	assert.Equal(t, float32(0), rb.Velocity.X)
}

func TestGetMissingPathIsNil(t *testing.T) {
	r, _, _ := newREPL(t)

	out, err := r.Eval(`scene.Get("Nobody.Name") == nil`)
	require.NoError(t, err)
	assert.Equal(t, "true", out)

	out, err = r.Eval(`scene.FindByUID(999999) == nil`)
	require.NoError(t, err)
	assert.Equal(t, "true", out)
}

func TestErrorsAreReturned(t *testing.T) {
	r, _, _ := newREPL(t)

	_, err := r.Eval("undefinedThing + 1")
	assert.Error(t, err)

	_, err = r.Eval(`panic("boom")`)
	assert.Error(t, err)

	_, err = r.Eval(`import "os"`)
	assert.Error(t, err, "os is not importable")

	out, err := r.Eval("1 + 1")
	require.NoError(t, err)
	assert.Equal(t, "2", out, "interpreter still usable")
}
