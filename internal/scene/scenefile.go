// Package scene loads and saves scenes as JSON documents.
package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scenedebug/internal/components"
	"scenedebug/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

// --- JSON types ---

type File struct {
	Name    string      `json:"name,omitempty"`
	Objects []ObjectDef `json:"objects"`
}

type ObjectDef struct {
	UID        uint64            `json:"uid,omitempty"`
	Name       string            `json:"name"`
	Tags       []string          `json:"tags,omitempty"`
	Active     *bool             `json:"active,omitempty"`
	Position   [3]float32        `json:"position"`
	Rotation   [3]float32        `json:"rotation"`
	Scale      [3]float32        `json:"scale"`
	Components []json.RawMessage `json:"components,omitempty"`
	Children   []ObjectDef       `json:"children,omitempty"`
}

type componentHeader struct {
	Type string `json:"type"`
}

type materialDef struct {
	Name       string             `json:"name,omitempty"`
	Shader     string             `json:"shader,omitempty"`
	Metallic   float32            `json:"metallic,omitempty"`
	Roughness  float32            `json:"roughness,omitempty"`
	Emissive   float32            `json:"emissive,omitempty"`
	Properties map[string]float32 `json:"properties,omitempty"`
}

type meshRendererDef struct {
	Type     string       `json:"type"`
	Mesh     string       `json:"mesh"`
	MeshSize []float32    `json:"meshSize,omitempty"`
	Color    string       `json:"color"`
	Material *materialDef `json:"material,omitempty"`
}

type boxColliderDef struct {
	Type   string     `json:"type"`
	Size   [3]float32 `json:"size"`
	Offset [3]float32 `json:"offset,omitempty"`
}

type sphereColliderDef struct {
	Type   string     `json:"type"`
	Radius float32    `json:"radius"`
	Offset [3]float32 `json:"offset,omitempty"`
}

type rigidbodyDef struct {
	Type        string     `json:"type"`
	Mass        float32    `json:"mass,omitempty"`
	Bounciness  float32    `json:"bounciness,omitempty"`
	Friction    float32    `json:"friction,omitempty"`
	UseGravity  *bool      `json:"useGravity,omitempty"`
	IsKinematic bool       `json:"isKinematic,omitempty"`
	Velocity    [3]float32 `json:"velocity,omitempty"`
}

type pointLightDef struct {
	Type      string  `json:"type"`
	Color     string  `json:"color,omitempty"`
	Intensity float32 `json:"intensity,omitempty"`
	Radius    float32 `json:"radius,omitempty"`
}

type directionalLightDef struct {
	Type      string     `json:"type"`
	Direction [3]float32 `json:"direction,omitempty"`
	Color     string     `json:"color,omitempty"`
	Intensity float32    `json:"intensity,omitempty"`
}

type scriptDef struct {
	Type  string         `json:"type"`
	Name  string         `json:"name"`
	Props map[string]any `json:"props,omitempty"`
}

func vec3(a [3]float32) rl.Vector3 {
	return rl.Vector3{X: a[0], Y: a[1], Z: a[2]}
}

func arr3(v rl.Vector3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// --- Loading ---

// Load reads a scene file. The scene is named after the file unless the
// document names itself.
func Load(path string) (*engine.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(data, name)
}

// Parse builds a scene from a JSON document.
func Parse(data []byte, name string) (*engine.Scene, error) {
	var sf File
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if sf.Name != "" {
		name = sf.Name
	}

	s := engine.NewScene(name)
	for _, def := range sf.Objects {
		s.AddGameObject(buildObject(def))
	}
	return s, nil
}

func buildObject(def ObjectDef) *engine.GameObject {
	g := engine.NewGameObjectWithUID(def.Name, def.UID)
	g.Tags = def.Tags
	if def.Active != nil {
		g.Active = *def.Active
	}
	g.Transform.Position = vec3(def.Position)
	g.Transform.Rotation = vec3(def.Rotation)

	// Default scale to 1 if zero
	if def.Scale != [3]float32{} {
		g.Transform.Scale = vec3(def.Scale)
	}

	for _, raw := range def.Components {
		c, err := decodeComponent(raw)
		if err != nil {
			log.WithError(err).WithField("object", g.Name).Warn("Skipping component")
			continue
		}
		g.AddComponent(c)
	}

	for _, childDef := range def.Children {
		g.AddChild(buildObject(childDef))
	}
	return g
}

func decodeComponent(raw json.RawMessage) (engine.Component, error) {
	var header componentHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, err
	}

	switch header.Type {
	case "MeshRenderer":
		var def meshRendererDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		mat := components.NewMaterial("default")
		if m := def.Material; m != nil {
			if m.Name != "" {
				mat.Name = m.Name
			}
			if m.Shader != "" {
				mat.Shader = m.Shader
			}
			if m.Roughness > 0 {
				mat.Roughness = m.Roughness
			}
			mat.Metallic = m.Metallic
			mat.Emissive = m.Emissive
			for k, v := range m.Properties {
				mat.Properties[k] = v
			}
		}
		mat.Color = LookupColor(def.Color)
		return components.NewMeshRenderer(def.Mesh, def.MeshSize, mat), nil

	case "BoxCollider":
		var def boxColliderDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		col := components.NewBoxCollider(vec3(def.Size))
		col.Offset = vec3(def.Offset)
		return col, nil

	case "SphereCollider":
		var def sphereColliderDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		col := components.NewSphereCollider(def.Radius)
		col.Offset = vec3(def.Offset)
		return col, nil

	case "Rigidbody":
		var def rigidbodyDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		rb := components.NewRigidbody()
		if def.Mass > 0 {
			rb.Mass = def.Mass
		}
		if def.Bounciness > 0 {
			rb.Bounciness = def.Bounciness
		}
		if def.Friction > 0 {
			rb.Friction = def.Friction
		}
		if def.UseGravity != nil {
			rb.UseGravity = *def.UseGravity
		}
		rb.IsKinematic = def.IsKinematic
		rb.Velocity = vec3(def.Velocity)
		return rb, nil

	case "PointLight":
		var def pointLightDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		light := components.NewPointLight()
		if def.Color != "" {
			light.Color = LookupColor(def.Color)
		}
		if def.Intensity > 0 {
			light.Intensity = def.Intensity
		}
		if def.Radius > 0 {
			light.Radius = def.Radius
		}
		return light, nil

	case "DirectionalLight":
		var def directionalLightDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		light := components.NewDirectionalLight()
		if def.Direction != [3]float32{} {
			light.Direction = rl.Vector3Normalize(vec3(def.Direction))
		}
		if def.Color != "" {
			light.Color = LookupColor(def.Color)
		}
		if def.Intensity > 0 {
			light.Intensity = def.Intensity
		}
		return light, nil

	case "Script":
		var def scriptDef
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, err
		}
		if comp := engine.Scripts.Create(def.Name, def.Props); comp != nil {
			return comp, nil
		}
		return nil, fmt.Errorf("unknown script %q", def.Name)
	}
	return nil, fmt.Errorf("unknown component type %q", header.Type)
}

// --- Saving ---

// Save writes s to path as indented JSON.
func Save(s *engine.Scene, path string) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}

// Marshal encodes s. Destroyed objects are left out.
func Marshal(s *engine.Scene) ([]byte, error) {
	sf := File{Name: s.Name}
	for _, g := range s.GameObjects {
		if g.Alive() {
			sf.Objects = append(sf.Objects, objectDef(g))
		}
	}
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return data, nil
}

func objectDef(g *engine.GameObject) ObjectDef {
	def := ObjectDef{
		UID:      g.UID,
		Name:     g.Name,
		Tags:     g.Tags,
		Position: arr3(g.Transform.Position),
		Rotation: arr3(g.Transform.Rotation),
		Scale:    arr3(g.Transform.Scale),
	}
	if !g.Active {
		active := false
		def.Active = &active
	}
	for _, c := range g.Components() {
		if raw := serializeComponent(c); raw != nil {
			def.Components = append(def.Components, raw)
		}
	}
	for _, child := range g.Children {
		if child.Alive() {
			def.Children = append(def.Children, objectDef(child))
		}
	}
	return def
}

func serializeComponent(c engine.Component) json.RawMessage {
	var def any

	switch comp := c.(type) {
	case *components.MeshRenderer:
		d := meshRendererDef{
			Type:     "MeshRenderer",
			Mesh:     comp.Mesh,
			MeshSize: comp.MeshSize,
			Color:    "White",
		}
		if m := comp.Material; m != nil {
			d.Color = LookupColorName(m.Color)
			d.Material = &materialDef{
				Name:       m.Name,
				Shader:     m.Shader,
				Metallic:   m.Metallic,
				Roughness:  m.Roughness,
				Emissive:   m.Emissive,
				Properties: m.Properties,
			}
		}
		def = d

	case *components.BoxCollider:
		def = boxColliderDef{
			Type:   "BoxCollider",
			Size:   arr3(comp.Size),
			Offset: arr3(comp.Offset),
		}

	case *components.SphereCollider:
		def = sphereColliderDef{
			Type:   "SphereCollider",
			Radius: comp.Radius,
			Offset: arr3(comp.Offset),
		}

	case *components.Rigidbody:
		useGravity := comp.UseGravity
		def = rigidbodyDef{
			Type:        "Rigidbody",
			Mass:        comp.Mass,
			Bounciness:  comp.Bounciness,
			Friction:    comp.Friction,
			UseGravity:  &useGravity,
			IsKinematic: comp.IsKinematic,
			Velocity:    arr3(comp.Velocity),
		}

	case *components.PointLight:
		def = pointLightDef{
			Type:      "PointLight",
			Color:     LookupColorName(comp.Color),
			Intensity: comp.Intensity,
			Radius:    comp.Radius,
		}

	case *components.DirectionalLight:
		def = directionalLightDef{
			Type:      "DirectionalLight",
			Direction: arr3(comp.Direction),
			Color:     LookupColorName(comp.Color),
			Intensity: comp.Intensity,
		}

	default:
		// Try script registry
		name, props, ok := engine.Scripts.Serialize(c)
		if !ok {
			return nil
		}
		def = scriptDef{Type: "Script", Name: name, Props: props}
	}

	data, err := json.Marshal(def)
	if err != nil {
		return nil
	}
	return data
}
