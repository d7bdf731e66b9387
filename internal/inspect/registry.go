package inspect

import (
	"reflect"

	"scenedebug/internal/components"
	"scenedebug/internal/engine"
	"scenedebug/internal/refchain"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ShaderProperties are the material uniforms worth showing. The rest of
// Material.Properties is engine bookkeeping.
var ShaderProperties = []string{
	"_Color",
	"_MainTex",
	"_Tiling",
	"_Glossiness",
	"_Metallic",
	"_BumpScale",
	"_EmissionColor",
	"_Cutoff",
}

// DefaultRegistry knows the engine's math, color and scene types.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	RegisterType[rl.Vector2](r, Entry{Kind: KindVector})
	RegisterType[rl.Vector3](r, Entry{Kind: KindVector})
	RegisterType[rl.Vector4](r, Entry{Kind: KindVector})
	RegisterType[rl.Color](r, Entry{Kind: KindColor})
	RegisterType[engine.GameObjectRef](r, Entry{
		Kind:   KindReference,
		Format: (*Explorer).formatReference,
	})
	RegisterType[engine.Transform](r, Entry{Kind: KindTransform, Format: formatTransform})
	RegisterType[components.Material](r, Entry{Kind: KindMaterial, Expand: expandMaterial, Format: formatMaterial})
	RegisterType[engine.GameObject](r, Entry{Kind: KindObject, Expand: expandGameObject})

	return r
}

// expandGameObject lists the components before the object's own members.
func expandGameObject(x *Explorer, v reflect.Value) []Member {
	var out []Member
	if g, ok := addrOf(v).(*engine.GameObject); ok {
		for _, c := range g.Components() {
			out = append(out, Member{
				Label:    ":" + componentLabel(c),
				Segments: []refchain.Segment{refchain.Component(c)},
			})
		}
	}
	return append(out, x.ObjectMembers(v)...)
}

func expandMaterial(x *Explorer, v reflect.Value) []Member {
	var out []Member
	for _, m := range x.ObjectMembers(v) {
		if m.Label != "Properties" {
			out = append(out, m)
		}
	}
	mat, ok := addrOf(v).(*components.Material)
	if !ok {
		return out
	}
	for _, name := range ShaderProperties {
		if _, ok := mat.Properties[name]; !ok {
			continue
		}
		out = append(out, Member{
			Label:    name,
			Segments: []refchain.Segment{refchain.Field("Properties"), refchain.MapEntry(name)},
		})
	}
	return out
}

func formatMaterial(_ *Explorer, v reflect.Value) string {
	return deref(v).FieldByName("Name").String()
}

func componentLabel(c engine.Component) string {
	t := reflect.TypeOf(c)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// addrOf returns a pointer to the struct behind v, if it can be had.
func addrOf(v reflect.Value) any {
	switch {
	case v.Kind() == reflect.Pointer && v.CanInterface():
		return v.Interface()
	case v.Kind() == reflect.Interface && !v.IsNil():
		return addrOf(v.Elem())
	case v.CanAddr() && v.Addr().CanInterface():
		return v.Addr().Interface()
	}
	return nil
}
