package inspect

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageAlwaysWithinBounds(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for range 2000 {
		s := NewState(r.Intn(60) - 5)
		n := r.Intn(200)
		s.SetPageStart("c", r.Intn(400)-100)

		start, end := s.Page("c", n)

		assert.GreaterOrEqual(t, start, 0)
		assert.LessOrEqual(t, end, n)
		assert.LessOrEqual(t, end-start, MaxPageSize)
		assert.Equal(t, min(s.PageSize(), n), end-start)
	}
}

func TestPageReclampsAfterShrink(t *testing.T) {
	s := NewState(32)
	s.SetPageStart("list", 90)

	start, end := s.Page("list", 100)
	assert.Equal(t, 68, start)
	assert.Equal(t, 100, end)

	start, end = s.Page("list", 10)
	assert.Equal(t, 0, start)
	assert.Equal(t, 10, end)

	start, end = s.Page("list", 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}

func TestExpansionAndClear(t *testing.T) {
	s := NewState(8)
	assert.True(t, s.Toggle("a"))
	s.Expand("b")
	s.MarkEvaluated("p")
	s.SetPageStart("l", 3)

	assert.True(t, s.IsExpanded("a"))
	assert.False(t, s.Toggle("a"))
	assert.False(t, s.IsExpanded("a"))
	assert.True(t, s.IsEvaluated("p"))

	e, v, p := s.Counts()
	assert.Equal(t, []int{1, 1, 1}, []int{e, v, p})

	s.Clear()
	e, v, p = s.Counts()
	assert.Equal(t, []int{0, 0, 0}, []int{e, v, p})
	assert.False(t, s.IsExpanded("b"))
}
