// Package inspect turns live scene objects into a tree of nodes, using
// reference chains so that every node can be found again next frame.
package inspect

import (
	"cmp"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"scenedebug/internal/engine"
	"scenedebug/internal/refchain"

	log "github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"
)

// maxIterate bounds how far an iterator is walked to count its elements.
const maxIterate = 4096

// Options control what the explorer lists.
type Options struct {
	MaxDepth           int
	EvaluateProperties bool
	ShowProperties     bool
	ShowUnexported     bool
	SortAlphabetically bool
}

// Member is one child of an expanded node. Most members are a single
// segment; registered expanders may reach further in one step.
type Member struct {
	Label    string
	Segments []refchain.Segment
	Property bool
}

type identity struct {
	t reflect.Type
	p uintptr
}

// Explorer builds node trees for a scene.
type Explorer struct {
	scene    *engine.Scene
	state    *State
	registry *Registry
	opts     Options

	visited mapset.Set[identity]
}

func NewExplorer(scene *engine.Scene, state *State, registry *Registry, opts Options) *Explorer {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = refchain.DefaultMaxDepth
	}
	return &Explorer{
		scene:    scene,
		state:    state,
		registry: registry,
		opts:     opts,
		visited:  mapset.New[identity](),
	}
}

func (x *Explorer) Scene() *engine.Scene { return x.scene }

func (x *Explorer) State() *State { return x.state }

func (x *Explorer) Options() Options { return x.opts }

func (x *Explorer) SetOptions(opts Options) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = refchain.DefaultMaxDepth
	}
	x.opts = opts
}

// SetScene switches to another scene and forgets all UI state.
func (x *Explorer) SetScene(s *engine.Scene) {
	x.scene = s
	x.state.Clear()
}

// Reset clears the UI state after a failure.
func (x *Explorer) Reset() {
	x.state.Clear()
	x.visited = mapset.New[identity]()
}

// RootChain is the chain for a scene object.
func (x *Explorer) RootChain(g *engine.GameObject) *refchain.Chain {
	c, _ := refchain.New(x.opts.MaxDepth).Add(refchain.GameObject(g))
	return c
}

// Build renders every root object of the scene using the stored
// expansion state.
func (x *Explorer) Build() []*Node {
	if x.scene == nil {
		return nil
	}
	roots := x.scene.Roots()
	nodes := make([]*Node, 0, len(roots))
	for _, g := range roots {
		nodes = append(nodes, x.BuildTree(x.RootChain(g), 0))
	}
	return nodes
}

// BuildTree renders the node for c. Nodes less than expandDepth levels
// below c are expanded regardless of the stored state. A negative
// expandDepth renders c alone, collapsed.
func (x *Explorer) BuildTree(c *refchain.Chain, expandDepth int) *Node {
	x.visited = mapset.New[identity]()
	return x.build(c, x.labelFor(c), false, expandDepth)
}

// Describe renders c as a single collapsed node.
func (x *Explorer) Describe(c *refchain.Chain) *Node {
	return x.BuildTree(c, -1)
}

func (x *Explorer) labelFor(c *refchain.Chain) string {
	last, ok := c.Last()
	if !ok {
		return ""
	}
	switch last.Kind {
	case refchain.KindField:
		return last.Name
	case refchain.KindProperty:
		return last.Name + "()"
	case refchain.KindSpecial:
		return "@" + last.Name
	case refchain.KindEnumerableItem, refchain.KindMapEntry:
		return "[" + last.DisplayName() + "]"
	}
	return last.DisplayName()
}

func (x *Explorer) build(c *refchain.Chain, label string, property bool, expandDepth int) (n *Node) {
	n = &Node{
		ID:       c.UniqueID(),
		Path:     c.String(),
		Label:    label,
		Property: property,
		chain:    c,
	}
	defer func() {
		if r := recover(); r != nil {
			n.Err = fmt.Sprintf("panic: %v", r)
			n.Children = nil
			log.WithField("path", n.Path).Debugf("Explorer recovered: %v", r)
		}
	}()

	if property && !x.opts.EvaluateProperties && !x.state.IsEvaluated(n.ID) {
		n.Value = "<not evaluated>"
		return n
	}
	n.Evaluated = property

	v, err := c.Resolve()
	if err != nil {
		n.Kind = KindNil
		n.Value = "null"
		if !absent(err) {
			n.Err = err.Error()
		}
		return n
	}

	kind, entry := x.registry.Classify(v)
	n.Kind = kind
	n.Type = typeName(v)
	n.Value = x.format(kind, entry, v)
	n.Jump = x.smartTarget(label, kind, v)

	if !kind.Expandable() {
		return n
	}
	n.Expandable = true
	n.Expanded = expandDepth > 0 || (expandDepth == 0 && x.state.IsExpanded(n.ID))
	if !n.Expanded {
		return n
	}

	if id, ok := identityOf(v); ok {
		if x.visited.Has(id) {
			n.Note = NoteCircular
			return n
		}
		x.visited.Put(id)
		defer x.visited.Remove(id)
	}

	if !c.CheckDepth() {
		n.Note = NoteTooDeep
		return n
	}

	members, page, note := x.members(n.ID, kind, entry, v)
	n.Page = page
	n.Note = note
	for _, m := range members {
		child, err := extend(c, m.Segments)
		if err != nil {
			n.Note = NoteTooDeep
			break
		}
		n.Children = append(n.Children, x.build(child, m.Label, m.Property, max(expandDepth-1, 0)))
	}
	return n
}

func extend(c *refchain.Chain, segs []refchain.Segment) (*refchain.Chain, error) {
	for _, s := range segs {
		next, err := c.Add(s)
		if err != nil {
			return nil, err
		}
		c = next
	}
	return c, nil
}

// absent errors mean "nothing there" rather than a failure worth showing.
func absent(err error) bool {
	return errors.Is(err, refchain.ErrStale) ||
		errors.Is(err, refchain.ErrNilHop) ||
		errors.Is(err, refchain.ErrOutOfRange)
}

func identityOf(v reflect.Value) (identity, bool) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map:
		if v.IsNil() {
			return identity{}, false
		}
		return identity{t: v.Type(), p: v.Pointer()}, true
	case reflect.Interface:
		if v.IsNil() {
			return identity{}, false
		}
		return identityOf(v.Elem())
	case reflect.Struct, reflect.Array:
		if v.CanAddr() {
			return identity{t: v.Type(), p: v.Addr().Pointer()}, true
		}
	}
	return identity{}, false
}

func typeName(v reflect.Value) string {
	if v.Kind() == reflect.Interface && !v.IsNil() {
		return v.Elem().Type().String()
	}
	return v.Type().String()
}

func (x *Explorer) members(id string, kind Kind, entry Entry, v reflect.Value) ([]Member, *Page, string) {
	if entry.Expand != nil {
		return entry.Expand(x, v), nil, ""
	}
	switch kind {
	case KindList:
		return x.listMembers(id, deref(v))
	case KindMap:
		return x.mapMembers(id, deref(v))
	case KindEnumerable:
		return x.iterMembers(id, deref(v))
	}
	return x.ObjectMembers(v), nil, ""
}

func deref(v reflect.Value) reflect.Value {
	for (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

func (x *Explorer) listMembers(id string, v reflect.Value) ([]Member, *Page, string) {
	n := v.Len()
	start, end := x.state.Page(id, n)
	out := make([]Member, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, Member{Label: fmt.Sprintf("[%d]", i), Segments: []refchain.Segment{refchain.Item(i)}})
	}
	return out, pageOf(start, end, n, false), ""
}

func (x *Explorer) mapMembers(id string, v reflect.Value) ([]Member, *Page, string) {
	if !v.CanInterface() {
		return nil, nil, NoteReadOnly
	}
	keys := v.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
	})
	start, end := x.state.Page(id, len(keys))
	out := make([]Member, 0, end-start)
	for _, k := range keys[start:end] {
		seg := refchain.MapEntry(k.Interface())
		out = append(out, Member{Label: "[" + seg.DisplayName() + "]", Segments: []refchain.Segment{seg}})
	}
	return out, pageOf(start, end, len(keys), false), ""
}

func (x *Explorer) iterMembers(id string, v reflect.Value) ([]Member, *Page, string) {
	n := 0
	more := false
	count := func() bool {
		if n == maxIterate {
			more = true
			return false
		}
		n++
		return true
	}
	switch {
	case v.Type().CanSeq():
		for range v.Seq() {
			if !count() {
				break
			}
		}
	case v.Type().CanSeq2():
		for range v.Seq2() {
			if !count() {
				break
			}
		}
	}
	start, end := x.state.Page(id, n)
	out := make([]Member, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, Member{Label: fmt.Sprintf("[%d]", i), Segments: []refchain.Segment{refchain.Item(i)}})
	}
	return out, pageOf(start, end, n, more), ""
}

func pageOf(start, end, total int, more bool) *Page {
	return &Page{Start: start, End: end, Total: total, More: more}
}

type pseudoLister interface {
	PseudoProperties() []string
}

// ObjectMembers lists fields, getter methods and pseudo-properties of a
// struct or pointer to struct.
func (x *Explorer) ObjectMembers(v reflect.Value) []Member {
	sv := deref(v)
	if sv.Kind() != reflect.Struct {
		return nil
	}

	var fields []Member
	t := sv.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() && !x.opts.ShowUnexported {
			continue
		}
		fields = append(fields, Member{Label: sf.Name, Segments: []refchain.Segment{refchain.Field(sf.Name)}})
	}

	var props []Member
	if x.opts.ShowProperties {
		props = x.propertyMembers(v)
	}

	var pseudo []Member
	if v.CanInterface() {
		if pl, ok := v.Interface().(pseudoLister); ok {
			for _, name := range pl.PseudoProperties() {
				pseudo = append(pseudo, Member{Label: "@" + name, Segments: []refchain.Segment{refchain.Special(name)}})
			}
		}
	}

	if x.opts.SortAlphabetically {
		byLabel := func(a, b Member) int { return strings.Compare(a.Label, b.Label) }
		slices.SortFunc(fields, byLabel)
		slices.SortFunc(props, byLabel)
	}
	out := append(fields, props...)
	return append(out, pseudo...)
}

// propertyMembers lists exported zero-argument methods that return a value
// or a value and an error.
func (x *Explorer) propertyMembers(v reflect.Value) []Member {
	mv := v
	if mv.Kind() == reflect.Interface && !mv.IsNil() {
		mv = mv.Elem()
	}
	if mv.Kind() != reflect.Pointer && mv.CanAddr() {
		mv = mv.Addr()
	}
	errType := reflect.TypeFor[error]()
	var out []Member
	t := mv.Type()
	for i := range t.NumMethod() {
		m := t.Method(i)
		ft := mv.Method(i).Type()
		if ft.NumIn() != 0 || ft.NumOut() == 0 || ft.NumOut() > 2 {
			continue
		}
		if ft.NumOut() == 2 && !ft.Out(1).Implements(errType) {
			continue
		}
		switch m.Name {
		case "String", "PseudoProperties", "PseudoProperty":
			continue
		}
		out = append(out, Member{
			Label:    m.Name + "()",
			Segments: []refchain.Segment{refchain.Property(m.Name)},
			Property: true,
		})
	}
	return out
}
