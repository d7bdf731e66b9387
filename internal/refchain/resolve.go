package refchain

import (
	"fmt"
	"reflect"
	"strings"
)

// Liveness is implemented by objects that can be destroyed while a chain
// still references them.
type Liveness interface {
	Alive() bool
}

// PseudoProvider answers Special segments.
type PseudoProvider interface {
	PseudoProperty(name string) (any, bool)
}

var errorType = reflect.TypeFor[error]()

// Evaluate walks the chain and returns the value it reaches, or false if
// any hop fails. It never panics.
func (c *Chain) Evaluate() (reflect.Value, bool) {
	v, err := c.Resolve()
	return v, err == nil
}

// Resolve is Evaluate with the reason for failure.
func (c *Chain) Resolve() (reflect.Value, error) {
	if len(c.segs) == 0 {
		return reflect.Value{}, ErrEmpty
	}
	var cur reflect.Value
	for i, s := range c.segs {
		next, err := step(cur, s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("segment %d (%s %s): %w", i, s.Kind, s.DisplayName(), err)
		}
		cur = next
	}
	return cur, nil
}

func step(cur reflect.Value, s Segment) (out reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = reflect.Value{}, fmt.Errorf("%w: panic: %v", ErrGetter, r)
		}
	}()

	switch s.Kind {
	case KindGameObject, KindComponent:
		return identity(s.Value)
	case KindField:
		return field(cur, s.Name)
	case KindProperty:
		return property(cur, s.Name)
	case KindEnumerableItem:
		return item(cur, s.Index)
	case KindMapEntry:
		return mapEntry(cur, s.Key)
	case KindSpecial:
		return special(cur, s.Name)
	}
	return reflect.Value{}, fmt.Errorf("unknown segment kind %d", s.Kind)
}

func identity(obj any) (reflect.Value, error) {
	if obj == nil {
		return reflect.Value{}, ErrNilHop
	}
	v := reflect.ValueOf(obj)
	if isNil(v) {
		return reflect.Value{}, ErrNilHop
	}
	if l, ok := obj.(Liveness); ok && !l.Alive() {
		return reflect.Value{}, ErrStale
	}
	return v, nil
}

func field(cur reflect.Value, name string) (reflect.Value, error) {
	v, err := indirect(cur)
	if err != nil {
		return reflect.Value{}, err
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %s has no fields", ErrNoMember, v.Type())
	}
	sf, ok := v.Type().FieldByName(name)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %s.%s", ErrNoMember, v.Type(), name)
	}
	f, err := v.FieldByIndexErr(sf.Index)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrNilHop, err)
	}
	return f, nil
}

func property(cur reflect.Value, name string) (reflect.Value, error) {
	m, ok := findMethod(cur, name)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: method %s", ErrNoMember, name)
	}
	mt := m.Type()
	if mt.NumIn() != 0 || mt.NumOut() == 0 || mt.NumOut() > 2 ||
		(mt.NumOut() == 2 && !mt.Out(1).Implements(errorType)) {
		return reflect.Value{}, fmt.Errorf("%w: %s is not a getter", ErrNoMember, name)
	}
	out := m.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrGetter, out[1].Interface())
	}
	return out[0], nil
}

// findMethod looks the method up on the value, its address and the value
// it points to, so both pointer and value receivers are found.
func findMethod(cur reflect.Value, name string) (reflect.Value, bool) {
	if !cur.IsValid() {
		return reflect.Value{}, false
	}
	for cur.Kind() == reflect.Interface && !cur.IsNil() {
		cur = cur.Elem()
	}
	candidates := []reflect.Value{cur}
	if cur.Kind() != reflect.Pointer && cur.CanAddr() {
		candidates = append(candidates, cur.Addr())
	}
	if cur.Kind() == reflect.Pointer && !cur.IsNil() {
		candidates = append(candidates, cur.Elem())
	}
	for _, c := range candidates {
		if m := c.MethodByName(name); m.IsValid() {
			return m, true
		}
	}
	return reflect.Value{}, false
}

func item(cur reflect.Value, index int) (reflect.Value, error) {
	v, err := indirect(cur)
	if err != nil {
		return reflect.Value{}, err
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.String:
		if index < 0 || index >= v.Len() {
			return reflect.Value{}, fmt.Errorf("%w: index %d, length %d", ErrOutOfRange, index, v.Len())
		}
		return v.Index(index), nil
	case reflect.Func:
		// Iterators are re-walked from the start on every evaluation.
		n := 0
		switch {
		case v.Type().CanSeq():
			for elem := range v.Seq() {
				if n == index {
					return elem, nil
				}
				n++
			}
		case v.Type().CanSeq2():
			for _, elem := range v.Seq2() {
				if n == index {
					return elem, nil
				}
				n++
			}
		default:
			return reflect.Value{}, fmt.Errorf("%w: %s is not enumerable", ErrNoMember, v.Type())
		}
		return reflect.Value{}, fmt.Errorf("%w: index %d, iterator yielded %d", ErrOutOfRange, index, n)
	}
	return reflect.Value{}, fmt.Errorf("%w: %s is not enumerable", ErrNoMember, v.Type())
}

func mapEntry(cur reflect.Value, key any) (reflect.Value, error) {
	v, err := indirect(cur)
	if err != nil {
		return reflect.Value{}, err
	}
	if v.Kind() != reflect.Map {
		return reflect.Value{}, fmt.Errorf("%w: %s is not a map", ErrNoMember, v.Type())
	}
	k, err := convert(key, v.Type().Key())
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: key %v", ErrNoMember, key)
	}
	e := v.MapIndex(k)
	if !e.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: key %v", ErrOutOfRange, key)
	}
	return e, nil
}

func special(cur reflect.Value, name string) (reflect.Value, error) {
	if !cur.IsValid() || !cur.CanInterface() {
		return reflect.Value{}, ErrNilHop
	}
	p, ok := cur.Interface().(PseudoProvider)
	if !ok && cur.CanAddr() {
		p, ok = cur.Addr().Interface().(PseudoProvider)
	}
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %s has no pseudo-properties", ErrNoMember, cur.Type())
	}
	val, ok := p.PseudoProperty(name)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: @%s", ErrNoMember, name)
	}
	return reflect.ValueOf(val), nil
}

func indirect(v reflect.Value) (reflect.Value, error) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, ErrNilHop
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return reflect.Value{}, ErrNilHop
	}
	return v, nil
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// componentName strips the package path from a component's type name.
func componentName(c any) string {
	if c == nil {
		return "null"
	}
	name := reflect.TypeOf(c).String()
	name = strings.TrimPrefix(name, "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
