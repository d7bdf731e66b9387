package scene

import (
	"os"
	"path/filepath"
	"testing"

	"scenedebug/internal/components"
	"scenedebug/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "objects": [
    {
      "uid": 9000,
      "name": "Floor",
      "position": [0, -1, 0],
      "rotation": [0, 0, 0],
      "scale": [0, 0, 0],
      "components": [
        {"type": "MeshRenderer", "mesh": "plane", "meshSize": [20, 20], "color": "#336699",
         "material": {"name": "tiles", "properties": {"_Tiling": 4}}},
        {"type": "BoxCollider", "size": [20, 0.1, 20]},
        {"type": "Teleporter"}
      ],
      "children": [
        {"uid": 9001, "name": "Lamp", "position": [0, 3, 0], "rotation": [0, 0, 0], "scale": [1, 1, 1],
         "components": [{"type": "PointLight", "color": "Gold", "intensity": 2}]}
      ]
    },
    {
      "name": "Guard",
      "tags": ["npc"],
      "position": [1, 0, 0],
      "rotation": [0, 0, 0],
      "scale": [1, 1, 1],
      "components": [
        {"type": "Rigidbody", "mass": 3, "useGravity": false},
        {"type": "Script", "name": "Patrol", "props": {"speed": 3, "target": 9001}}
      ]
    }
  ]
}`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sample), "demo")
	require.NoError(t, err)

	assert.Equal(t, "demo", s.Name)
	require.Len(t, s.GameObjects, 2)
	assert.Equal(t, 3, s.Count())

	floor := s.FindByUID(9000)
	require.NotNil(t, floor)
	assert.Equal(t, rl.Vector3{X: 1, Y: 1, Z: 1}, floor.Transform.Scale)
	assert.Len(t, floor.Components(), 2, "unknown component types are skipped")

	mr := engine.GetComponent[*components.MeshRenderer](floor)
	require.NotNil(t, mr)
	assert.Equal(t, rl.NewColor(0x33, 0x66, 0x99, 0xff), mr.Material.Color)
	assert.Equal(t, float32(4), mr.Material.Properties["_Tiling"])

	lamp := s.FindByUID(9001)
	require.NotNil(t, lamp)
	assert.Same(t, floor, lamp.Parent)
	assert.Equal(t, rl.Gold, engine.GetComponent[*components.PointLight](lamp).Color)

	guard := s.FindByName("Guard")
	require.NotNil(t, guard)
	assert.Greater(t, guard.UID, uint64(9001))
	rb := engine.GetComponent[*components.Rigidbody](guard)
	require.NotNil(t, rb)
	assert.False(t, rb.UseGravity)
	patrol := engine.GetComponent[*components.Patrol](guard)
	require.NotNil(t, patrol)
	assert.Same(t, lamp, patrol.Target.Get(s))
}

func TestSaveAndLoad(t *testing.T) {
	s, err := Parse([]byte(sample), "demo")
	require.NoError(t, err)
	s.FindByName("Guard").Transform.Position.Z = 5

	path := filepath.Join(t.TempDir(), "level.json")
	require.NoError(t, Save(s, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", loaded.Name)
	assert.Equal(t, float32(5), loaded.FindByName("Guard").Transform.Position.Z)
	assert.NotNil(t, loaded.FindByUID(9001))
}

func TestMarshalSkipsDestroyed(t *testing.T) {
	s, err := Parse([]byte(sample), "demo")
	require.NoError(t, err)
	s.FindByUID(9001).Destroy()

	data, err := Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Lamp")
	assert.Contains(t, string(data), "Floor")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("skyblue")
	require.NoError(t, err)
	assert.Equal(t, rl.SkyBlue, c)

	c, err = ParseColor("#10203040")
	require.NoError(t, err)
	assert.Equal(t, rl.NewColor(0x10, 0x20, 0x30, 0x40), c)

	for _, bad := range []string{"#123", "#zzzzzz", "ultraviolet"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, "Gold", LookupColorName(rl.Gold))
	assert.Equal(t, "#01020304", LookupColorName(rl.NewColor(1, 2, 3, 4)))
	assert.Equal(t, rl.White, LookupColor("nope"))
}
