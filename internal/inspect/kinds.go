package inspect

import (
	"fmt"
	"reflect"
	"strconv"
)

// Kind is the closed set of ways the explorer knows how to render a value.
type Kind uint8

const (
	KindNil Kind = iota
	KindScalar
	KindVector
	KindColor
	KindList
	KindMap
	KindEnumerable
	KindObject
	KindReference
	KindMaterial
	KindTransform
)

var kindNames = [...]string{
	KindNil:        "nil",
	KindScalar:     "scalar",
	KindVector:     "vector",
	KindColor:      "color",
	KindList:       "list",
	KindMap:        "map",
	KindEnumerable: "enumerable",
	KindObject:     "object",
	KindReference:  "reference",
	KindMaterial:   "material",
	KindTransform:  "transform",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown kind %q", b)
}

// Expandable reports whether nodes of this kind can have children.
func (k Kind) Expandable() bool {
	switch k {
	case KindList, KindMap, KindEnumerable, KindObject, KindMaterial, KindTransform:
		return true
	}
	return false
}

// Entry describes how a registered type is rendered. A nil Expand or
// Format falls back to the default for Kind.
type Entry struct {
	Kind   Kind
	Expand func(x *Explorer, v reflect.Value) []Member
	Format func(x *Explorer, v reflect.Value) string
}

// Registry maps concrete types to their rendering entry.
type Registry struct {
	entries map[reflect.Type]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[reflect.Type]Entry)}
}

func (r *Registry) Register(t reflect.Type, e Entry) {
	r.entries[t] = e
}

// RegisterType is Register for a static type.
func RegisterType[T any](r *Registry, e Entry) {
	r.Register(reflect.TypeFor[T](), e)
}

func (r *Registry) Lookup(t reflect.Type) (Entry, bool) {
	e, ok := r.entries[t]
	return e, ok
}

// Classify picks the kind for v. Pointers and interfaces are looked
// through; registered types win over the structural defaults.
func (r *Registry) Classify(v reflect.Value) (Kind, Entry) {
	for {
		if !v.IsValid() {
			return KindNil, Entry{}
		}
		if e, ok := r.entries[v.Type()]; ok {
			return e.Kind, e
		}
		switch v.Kind() {
		case reflect.Pointer, reflect.Interface:
			if v.IsNil() {
				return KindNil, Entry{}
			}
			v = v.Elem()
			continue
		case reflect.Map:
			if v.IsNil() {
				return KindNil, Entry{}
			}
			return KindMap, Entry{Kind: KindMap}
		case reflect.Slice:
			if v.IsNil() {
				return KindNil, Entry{}
			}
			return KindList, Entry{Kind: KindList}
		case reflect.Array:
			return KindList, Entry{Kind: KindList}
		case reflect.Struct:
			return KindObject, Entry{Kind: KindObject}
		case reflect.Func:
			if v.IsNil() {
				return KindNil, Entry{}
			}
			if v.Type().CanSeq() || v.Type().CanSeq2() {
				return KindEnumerable, Entry{Kind: KindEnumerable}
			}
		}
		return KindScalar, Entry{Kind: KindScalar}
	}
}
