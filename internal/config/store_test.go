package config

import (
	"os"
	"path/filepath"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.xml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestRoundTripEachFormat(t *testing.T) {
	for _, name := range []string{"settings.xml", "settings.json", "settings.yaml", "settings.YML"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := Defaults()
			want.MaxDepth = 12
			want.EvaluateProperties = true
			want.NameColor = rl.NewColor(1, 2, 3, 4)
			want.ConsoleRect = rl.NewRectangle(1, 2, 3, 4)

			require.NoError(t, Save(path, want))
			got, err := Load(path)
			require.NoError(t, err)

			assert.Equal(t, 12, got.MaxDepth)
			assert.True(t, got.EvaluateProperties)
			assert.Equal(t, want.NameColor, got.NameColor)
			assert.Equal(t, want.ConsoleRect, got.ConsoleRect)
			assert.Equal(t, want.HTTPAddr, got.HTTPAddr)
		})
	}
}

func TestPartialXMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.xml")
	doc := `<SceneDebugConfiguration><MaxHierarchyDepth>5</MaxHierarchyDepth></SceneDebugConfiguration>`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, s.MaxDepth)
	assert.Equal(t, Defaults().PageSize, s.PageSize)
}

func TestUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.ini")
	require.NoError(t, os.WriteFile(path, []byte("x=1"), 0644))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.ErrorIs(t, Save(path, Defaults()), ErrUnknownFormat)
}

func TestNormalizeCapsPageSize(t *testing.T) {
	s := Defaults()
	s.PageSize = 500
	s.MaxDepth = 0
	s.Normalize()
	assert.Equal(t, MaxPageSize, s.PageSize)
	assert.Equal(t, 32, s.MaxDepth)

	s.PageSize = -3
	s.Normalize()
	assert.Equal(t, 1, s.PageSize)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCENEDEBUG_MAX_DEPTH", "7")
	t.Setenv("SCENEDEBUG_ERROR_COLOR", "#ff000080")
	t.Setenv("SCENEDEBUG_WATCHES_RECT", "1,2,3,4")

	st, err := Open(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	s := st.Get()
	assert.Equal(t, 7, s.MaxDepth)
	assert.Equal(t, rl.NewColor(255, 0, 0, 128), s.ErrorColor)
	assert.Equal(t, rl.NewRectangle(1, 2, 3, 4), s.WatchesRect)
	assert.Equal(t, Defaults().FrameRate, s.FrameRate)
}

func TestStoreSavesAndNotifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	st, err := Open(path)
	require.NoError(t, err)

	var seen []int
	st.OnChange.AddListener(func(s Settings) { seen = append(seen, s.PageSize) })

	require.NoError(t, st.Set("pagesize", "8"))
	require.NoError(t, st.Set("valueColor", "gold"))
	assert.Error(t, st.Set("pageSize", "many"))
	assert.Error(t, st.Set("bogus", "1"))

	assert.Equal(t, []int{8, 8}, seen)

	onDisk, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, onDisk.PageSize)
	assert.Equal(t, rl.Gold, onDisk.ValueColor)
}

func TestFieldsListsSettings(t *testing.T) {
	s := Defaults()
	fields := s.Fields()
	byName := map[string]string{}
	for _, f := range fields {
		byName[f.Name] = f.Value
	}
	assert.Equal(t, "32", byName["maxDepth"])
	assert.Equal(t, "Red", byName["errorColor"])
	assert.Equal(t, "16,16,512,256", byName["consoleRect"])
	assert.NotContains(t, byName, "XMLName")
}

func TestOverrideDoesNotSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	st, err := Open(path)
	require.NoError(t, err)
	notified := false
	st.OnChange.AddListener(func(Settings) { notified = true })

	st.Override(func(s *Settings) { s.HTTPAddr = ""; s.PageSize = 500 })

	assert.Empty(t, st.Get().HTTPAddr)
	assert.Equal(t, MaxPageSize, st.Get().PageSize)
	assert.False(t, notified)
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOverrideSurvivesSetButIsNotSaved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, Save(path, Defaults()))
	t.Setenv("SCENEDEBUG_MAX_DEPTH", "7")

	st, err := Open(path)
	require.NoError(t, err)
	st.Override(func(s *Settings) { s.HTTPAddr = "" })

	var seen Settings
	st.OnChange.AddListener(func(s Settings) { seen = s })
	require.NoError(t, st.Set("pageSize", "8"))

	assert.Empty(t, seen.HTTPAddr, "listeners see the effective settings")
	assert.Empty(t, st.Get().HTTPAddr)
	assert.Equal(t, 7, st.Get().MaxDepth)
	assert.Equal(t, 8, st.Get().PageSize)

	onDisk, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Defaults().HTTPAddr, onDisk.HTTPAddr)
	assert.Equal(t, Defaults().MaxDepth, onDisk.MaxDepth)
	assert.Equal(t, 8, onDisk.PageSize)
}
