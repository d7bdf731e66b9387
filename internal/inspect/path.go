package inspect

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"scenedebug/internal/engine"
	"scenedebug/internal/refchain"
)

var (
	ErrPathSyntax = errors.New("path syntax error")
	ErrNotFound   = errors.New("not found")
)

// ParsePath builds a chain from text such as
//
//	Player:Rigidbody.Velocity.X
//	#12.Children[0]@world_position
//	"Main Camera":Patrol.Visits["wp0"]
//	Guard:Patrol.Current()
//
// The first token names a game object (or #uid). After it, :Type picks a
// component, .Name a field, .Name() a property, [n] an index or map key and
// @name a pseudo-property. Brackets are resolved against the live value:
// on a map they select a key, on anything else an index.
func ParsePath(s *engine.Scene, text string, maxDepth int) (*refchain.Chain, error) {
	p := &pathParser{src: strings.TrimSpace(text)}
	if p.src == "" {
		return nil, fmt.Errorf("%w: empty path", ErrPathSyntax)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: no scene loaded", ErrNotFound)
	}

	root, err := p.root(s)
	if err != nil {
		return nil, err
	}
	c, err := refchain.New(maxDepth).Add(refchain.GameObject(root))
	if err != nil {
		return nil, err
	}

	for !p.done() {
		seg, err := p.segment(c, root)
		if err != nil {
			return nil, err
		}
		if c, err = c.Add(seg); err != nil {
			return nil, err
		}
	}
	return c, nil
}

type pathParser struct {
	src string
	pos int
}

func (p *pathParser) done() bool { return p.pos >= len(p.src) }

func (p *pathParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at %d: %s", ErrPathSyntax, p.pos, fmt.Sprintf(format, args...))
}

func (p *pathParser) root(s *engine.Scene) (*engine.GameObject, error) {
	var name string
	switch {
	case strings.HasPrefix(p.src, `"`):
		end := strings.IndexByte(p.src[1:], '"')
		if end < 0 {
			return nil, p.errorf("unterminated quote")
		}
		name = p.src[1 : end+1]
		p.pos = end + 2
	default:
		p.pos = strings.IndexAny(p.src, ":.[@")
		if p.pos < 0 {
			p.pos = len(p.src)
		}
		name = p.src[:p.pos]
	}

	if uidText, ok := strings.CutPrefix(name, "#"); ok {
		uid, err := strconv.ParseUint(uidText, 10, 64)
		if err != nil {
			return nil, p.errorf("bad uid %q", uidText)
		}
		if g := s.FindByUID(uid); g != nil && g.Alive() {
			return g, nil
		}
		return nil, fmt.Errorf("%w: object #%d", ErrNotFound, uid)
	}
	if name == "" {
		return nil, p.errorf("missing object name")
	}
	if g := s.FindByName(name); g != nil && g.Alive() {
		return g, nil
	}
	return nil, fmt.Errorf("%w: object %q", ErrNotFound, name)
}

func (p *pathParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune(":.[@(", rune(p.src[p.pos])) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *pathParser) segment(c *refchain.Chain, root *engine.GameObject) (refchain.Segment, error) {
	op := p.src[p.pos]
	p.pos++
	switch op {
	case ':':
		name := p.ident()
		owner := root
		if v, ok := c.Evaluate(); ok && v.CanInterface() {
			if g, ok := v.Interface().(*engine.GameObject); ok {
				owner = g
			}
		}
		for _, comp := range owner.Components() {
			if strings.EqualFold(componentLabel(comp), name) {
				return refchain.Component(comp), nil
			}
		}
		return refchain.Segment{}, fmt.Errorf("%w: component %q on %s", ErrNotFound, name, owner)
	case '.':
		name := p.ident()
		if name == "" {
			return refchain.Segment{}, p.errorf("missing member name")
		}
		if strings.HasPrefix(p.src[p.pos:], "()") {
			p.pos += 2
			return refchain.Property(name), nil
		}
		return refchain.Field(name), nil
	case '@':
		name := p.ident()
		if name == "" {
			return refchain.Segment{}, p.errorf("missing pseudo-property name")
		}
		return refchain.Special(name), nil
	case '[':
		return p.bracket(c)
	}
	return refchain.Segment{}, p.errorf("unexpected %q", op)
}

func (p *pathParser) bracket(c *refchain.Chain) (refchain.Segment, error) {
	end := strings.IndexByte(p.src[p.pos:], ']')
	if strings.HasPrefix(p.src[p.pos:], `"`) {
		q := strings.IndexByte(p.src[p.pos+1:], '"')
		if q < 0 {
			return refchain.Segment{}, p.errorf("unterminated quote")
		}
		end = q + 2
		if !strings.HasPrefix(p.src[p.pos+end:], "]") {
			return refchain.Segment{}, p.errorf("expected ]")
		}
	}
	if end < 0 {
		return refchain.Segment{}, p.errorf("expected ]")
	}
	raw := p.src[p.pos : p.pos+end]
	p.pos += end + 1

	if unq, err := strconv.Unquote(raw); err == nil {
		return refchain.MapEntry(unq), nil
	}

	if v, ok := c.Evaluate(); ok {
		if m := deref(v); m.Kind() == reflect.Map {
			key, err := ParseValue(m.Type().Key(), raw)
			if err != nil {
				return refchain.Segment{}, p.errorf("bad key %q: %v", raw, err)
			}
			return refchain.MapEntry(key.Interface()), nil
		}
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return refchain.Segment{}, p.errorf("bad index %q", raw)
	}
	return refchain.Item(n), nil
}
