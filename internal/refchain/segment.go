package refchain

import (
	"fmt"
	"reflect"
	"strconv"
)

// Kind tags what a segment hops through.
type Kind uint8

const (
	// KindGameObject and KindComponent are identity hops: the segment
	// carries the live object and evaluation simply switches to it.
	KindGameObject Kind = iota + 1
	KindComponent
	// KindField reads a struct field by name.
	KindField
	// KindProperty calls a zero-argument method returning a value, or a
	// value and an error.
	KindProperty
	// KindEnumerableItem selects the Nth element of a slice, array or
	// range-over-func iterator.
	KindEnumerableItem
	// KindMapEntry selects a map value by key.
	KindMapEntry
	// KindSpecial asks the current object for a named pseudo-property.
	KindSpecial
)

var kindNames = map[Kind]string{
	KindGameObject:     "GameObject",
	KindComponent:      "Component",
	KindField:          "Field",
	KindProperty:       "Property",
	KindEnumerableItem: "EnumerableItem",
	KindMapEntry:       "MapEntry",
	KindSpecial:        "Special",
}

// kindCodes are the single-letter tags used in unique ids. Never reuse one.
var kindCodes = map[Kind]byte{
	KindGameObject:     'g',
	KindComponent:      'c',
	KindField:          'f',
	KindProperty:       'p',
	KindEnumerableItem: 'i',
	KindMapEntry:       'k',
	KindSpecial:        's',
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Segment is one hop of a chain. Which payload field is meaningful depends
// on Kind.
type Segment struct {
	Kind  Kind
	Name  string // Field, Property, Special
	Index int    // EnumerableItem
	Key   any    // MapEntry
	Value any    // GameObject, Component
}

func GameObject(obj any) Segment { return Segment{Kind: KindGameObject, Value: obj} }
func Component(c any) Segment { return Segment{Kind: KindComponent, Value: c} }
func Field(name string) Segment { return Segment{Kind: KindField, Name: name} }
func Property(name string) Segment { return Segment{Kind: KindProperty, Name: name} }
func Item(index int) Segment { return Segment{Kind: KindEnumerableItem, Index: index} }
func MapEntry(key any) Segment { return Segment{Kind: KindMapEntry, Key: key} }
func Special(name string) Segment { return Segment{Kind: KindSpecial, Name: name} }

// DisplayName is the human-readable payload of the segment.
func (s Segment) DisplayName() string {
	switch s.Kind {
	case KindGameObject, KindComponent:
		return objectName(s.Value)
	case KindEnumerableItem:
		return strconv.Itoa(s.Index)
	case KindMapEntry:
		if str, ok := s.Key.(string); ok {
			return strconv.Quote(str)
		}
		return fmt.Sprint(s.Key)
	default:
		return s.Name
	}
}

// Equal compares kind and payload. Live objects compare by identity.
func (s Segment) Equal(o Segment) bool {
	if s.Kind != o.Kind {
		return false
	}
	switch s.Kind {
	case KindGameObject, KindComponent:
		return sameObject(s.Value, o.Value)
	case KindEnumerableItem:
		return s.Index == o.Index
	case KindMapEntry:
		return sameKey(s.Key, o.Key)
	default:
		return s.Name == o.Name
	}
}

func objectName(v any) string {
	if v == nil {
		return "null"
	}
	if str, ok := v.(fmt.Stringer); ok {
		return str.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return fmt.Sprintf("%s@%x", rv.Type(), rv.Pointer())
	}
	return fmt.Sprintf("%s:%v", rv.Type(), v)
}

func sameObject(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	return va.Comparable() && va.Equal(vb)
}

func sameKey(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() {
		return false
	}
	return va.Equal(vb)
}
