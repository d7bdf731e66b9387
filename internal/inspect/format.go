package inspect

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"scenedebug/internal/scene"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// FormatValue renders v the way the explorer shows it on one line.
func (x *Explorer) FormatValue(v reflect.Value) string {
	kind, entry := x.registry.Classify(v)
	return x.format(kind, entry, v)
}

func (x *Explorer) format(kind Kind, entry Entry, v reflect.Value) string {
	if entry.Format != nil {
		return entry.Format(x, v)
	}
	v = deref(v)
	switch kind {
	case KindNil:
		return "null"
	case KindScalar:
		return formatScalar(v)
	case KindVector:
		return formatVector(v)
	case KindColor:
		return formatColor(v)
	case KindList:
		return fmt.Sprintf("len %d", v.Len())
	case KindMap:
		return fmt.Sprintf("len %d", v.Len())
	case KindEnumerable:
		return "iterator"
	}
	return formatObject(v)
}

func formatScalar(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return strconv.Quote(v.String())
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return v.Type().String()
	}
	return fmt.Sprint(v)
}

// formatVector prints every float field, so it works for any vector-like
// struct.
func formatVector(v reflect.Value) string {
	parts := make([]string, 0, v.NumField())
	for i := range v.NumField() {
		f := v.Field(i)
		if f.Kind() == reflect.Float32 || f.Kind() == reflect.Float64 {
			parts = append(parts, strconv.FormatFloat(f.Float(), 'g', -1, 32))
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func colorOf(v reflect.Value) rl.Color {
	return rl.Color{
		R: uint8(v.FieldByName("R").Uint()),
		G: uint8(v.FieldByName("G").Uint()),
		B: uint8(v.FieldByName("B").Uint()),
		A: uint8(v.FieldByName("A").Uint()),
	}
}

func formatColor(v reflect.Value) string {
	return scene.LookupColorName(colorOf(v))
}

func formatObject(v reflect.Value) string {
	if v.CanAddr() && v.Addr().CanInterface() {
		if s, ok := v.Addr().Interface().(fmt.Stringer); ok {
			return s.String()
		}
	}
	if v.CanInterface() {
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return s.String()
		}
	}
	return "{" + v.Type().Name() + "}"
}

func (x *Explorer) formatReference(v reflect.Value) string {
	uid := deref(v).FieldByName("UID").Uint()
	if uid == 0 {
		return "none"
	}
	if x.scene != nil {
		if g := x.scene.FindByUID(uid); g != nil && g.Alive() {
			return g.String()
		}
	}
	return fmt.Sprintf("#%d (missing)", uid)
}

var uidLabel = regexp.MustCompile(`(?i)(uid|objectid)$`)

// smartTarget guesses whether a value identifies another scene object and
// returns "#uid" for it. Only objects that exist are offered.
func (x *Explorer) smartTarget(label string, kind Kind, v reflect.Value) string {
	var uid uint64
	switch {
	case kind == KindReference:
		uid = deref(v).FieldByName("UID").Uint()
	case kind == KindScalar && uidLabel.MatchString(label):
		switch v.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			uid = v.Uint()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if v.Int() > 0 {
				uid = uint64(v.Int())
			}
		}
	}
	if uid == 0 || x.scene == nil {
		return ""
	}
	if g := x.scene.FindByUID(uid); g == nil || !g.Alive() {
		return ""
	}
	return "#" + strconv.FormatUint(uid, 10)
}

func formatTransform(_ *Explorer, v reflect.Value) string {
	t := deref(v)
	return fmt.Sprintf("pos %s rot %s scale %s",
		formatVector(t.FieldByName("Position")),
		formatVector(t.FieldByName("Rotation")),
		formatVector(t.FieldByName("Scale")))
}
