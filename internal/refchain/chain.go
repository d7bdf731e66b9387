// Package refchain records how a value was reached from a scene object so
// that it can be re-read every frame without holding the value itself.
//
// A Chain is an ordered list of segments. Chains are immutable: Add returns
// a new chain and never touches the receiver, so a chain can be shared by
// the explorer, the watch list and the debug server at once.
package refchain

import (
	"errors"
	"strings"
	"sync"
)

// DefaultMaxDepth bounds chains when no explicit limit is configured.
const DefaultMaxDepth = 32

var (
	ErrMaxDepth    = errors.New("refchain: max depth reached")
	ErrEmpty       = errors.New("refchain: empty chain")
	ErrStale       = errors.New("refchain: object no longer alive")
	ErrNilHop      = errors.New("refchain: nil value along chain")
	ErrNoMember    = errors.New("refchain: no such member")
	ErrOutOfRange  = errors.New("refchain: index or key out of range")
	ErrGetter      = errors.New("refchain: getter failed")
	ErrNotSettable = errors.New("refchain: target is not settable")
	ErrType        = errors.New("refchain: value has incompatible type")
)

// Chain is an immutable path of segments starting at a live object.
type Chain struct {
	segs     []Segment
	maxDepth int

	idOnce sync.Once
	id     string
}

// New returns an empty chain that refuses to grow past maxDepth segments.
// A non-positive maxDepth selects DefaultMaxDepth.
func New(maxDepth int) *Chain {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Chain{maxDepth: maxDepth}
}

// From is a shorthand for New followed by one Add per segment.
func From(maxDepth int, segs ...Segment) (*Chain, error) {
	c := New(maxDepth)
	for _, s := range segs {
		next, err := c.Add(s)
		if err != nil {
			return nil, err
		}
		c = next
	}
	return c, nil
}

// Add returns a new chain with s appended. The receiver is left untouched.
func (c *Chain) Add(s Segment) (*Chain, error) {
	if len(c.segs) >= c.maxDepth {
		return nil, ErrMaxDepth
	}
	segs := make([]Segment, len(c.segs)+1)
	copy(segs, c.segs)
	segs[len(c.segs)] = s
	return &Chain{segs: segs, maxDepth: c.maxDepth}, nil
}

// CheckDepth reports whether one more segment may still be added.
func (c *Chain) CheckDepth() bool {
	return len(c.segs) < c.maxDepth
}

func (c *Chain) MaxDepth() int { return c.maxDepth }

func (c *Chain) Len() int { return len(c.segs) }

// Segments returns a copy of the segments, root first.
func (c *Chain) Segments() []Segment {
	out := make([]Segment, len(c.segs))
	copy(out, c.segs)
	return out
}

// Last returns the final segment.
func (c *Chain) Last() (Segment, bool) {
	if len(c.segs) == 0 {
		return Segment{}, false
	}
	return c.segs[len(c.segs)-1], true
}

// Parent drops the last segment. The parent of an empty chain is nil.
func (c *Chain) Parent() *Chain {
	if len(c.segs) == 0 {
		return nil
	}
	return &Chain{segs: c.segs[:len(c.segs)-1:len(c.segs)-1], maxDepth: c.maxDepth}
}

// Reverse returns the segments in leaf-to-root order. The result is only
// useful for display; it does not evaluate.
func (c *Chain) Reverse() *Chain {
	segs := make([]Segment, len(c.segs))
	for i, s := range c.segs {
		segs[len(segs)-1-i] = s
	}
	return &Chain{segs: segs, maxDepth: c.maxDepth}
}

// Equal compares two chains segment by segment.
func (c *Chain) Equal(o *Chain) bool {
	if c == nil || o == nil {
		return c == o
	}
	if len(c.segs) != len(o.segs) {
		return false
	}
	for i := range c.segs {
		if !c.segs[i].Equal(o.segs[i]) {
			return false
		}
	}
	return true
}

var idEscaper = strings.NewReplacer(`\`, `\\`, `/`, `\/`)

// UniqueID is a deterministic textual key for the chain. Two chains have
// the same id exactly when they are Equal, as long as the live objects in
// identity hops have distinct display names. The id is computed once.
func (c *Chain) UniqueID() string {
	c.idOnce.Do(func() {
		var b strings.Builder
		for i, s := range c.segs {
			if i > 0 {
				b.WriteByte('/')
			}
			b.WriteByte(kindCodes[s.Kind])
			b.WriteString(idEscaper.Replace(s.DisplayName()))
		}
		c.id = b.String()
	})
	return c.id
}

// String renders the chain as a path, for example
// Player#3:Rigidbody.Velocity.X
func (c *Chain) String() string {
	var b strings.Builder
	for _, s := range c.segs {
		switch s.Kind {
		case KindGameObject:
			if b.Len() > 0 {
				b.WriteString(" -> ")
			}
			b.WriteString(s.DisplayName())
		case KindComponent:
			b.WriteByte(':')
			b.WriteString(componentName(s.Value))
		case KindField:
			b.WriteByte('.')
			b.WriteString(s.Name)
		case KindProperty:
			b.WriteByte('.')
			b.WriteString(s.Name)
			b.WriteString("()")
		case KindEnumerableItem, KindMapEntry:
			b.WriteByte('[')
			b.WriteString(s.DisplayName())
			b.WriteByte(']')
		case KindSpecial:
			b.WriteByte('@')
			b.WriteString(s.Name)
		}
	}
	return b.String()
}
