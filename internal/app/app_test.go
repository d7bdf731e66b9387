package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scenedebug/internal/components"
	"scenedebug/internal/config"
	"scenedebug/internal/engine"
	"scenedebug/internal/frame"
	"scenedebug/internal/scene"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bomb struct {
	engine.BaseComponent
	armed bool
}

func (b *bomb) Update(float32) {
	if b.armed {
		panic("boom")
	}
}

func newApp(t *testing.T) (*App, *engine.GameObject) {
	t.Helper()
	s := engine.NewScene("app")
	g := engine.NewGameObject("Ball")
	g.AddComponent(components.NewRigidbody())
	s.AddGameObject(g)
	st := config.Defaults()
	st.HTTPAddr = ""
	a, err := New(config.NewStore(st), s)
	require.NoError(t, err)
	a.Out = &bytes.Buffer{}
	return a, g
}

func TestPanicResetsExplorerAndLoopContinues(t *testing.T) {
	a, g := newApp(t)
	b := &bomb{}
	g.AddComponent(b)
	a.Exec("expand Ball")
	a.Exec("watch add Ball.Name")
	a.Step(0.016)
	e, _, _ := a.Explorer.State().Counts()
	require.Equal(t, 1, e)

	b.armed = true
	a.Step(0.016)

	e, _, _ = a.Explorer.State().Counts()
	assert.Zero(t, e, "expansion state cleared")
	assert.Equal(t, uint64(1), a.Recovers())
	assert.Equal(t, uint64(2), a.Frames())

	b.armed = false
	a.Step(0.016)
	assert.Equal(t, uint64(1), a.Recovers())
	assert.Equal(t, uint64(4), a.Watches.Snapshot()[0].Frames, "refreshed on add and every frame")
}

func TestPanicInQueuedWorkResetsExplorer(t *testing.T) {
	a, _ := newApp(t)
	a.Exec("expand Ball")

	errc := make(chan error, 1)
	go func() { errc <- a.Frame.Do(context.Background(), func() { panic("bad request") }) }()
	require.Eventually(t, func() bool {
		a.Step(0.016)
		return a.Recovers() == 1
	}, 2*time.Second, time.Millisecond)

	assert.ErrorIs(t, <-errc, frame.ErrPanicked)
	e, _, _ := a.Explorer.State().Counts()
	assert.Zero(t, e)
}

func TestExecPrintsErrors(t *testing.T) {
	a, _ := newApp(t)
	out := a.Out.(*bytes.Buffer)

	a.Exec("bogus")
	assert.Contains(t, out.String(), "error: unknown command")

	out.Reset()
	a.Exec("get Ball.Name")
	assert.Contains(t, out.String(), `"Ball"`)
}

func TestSettingsChangesApply(t *testing.T) {
	a, _ := newApp(t)

	a.Exec("settings showUnexported true")
	assert.True(t, a.Explorer.Options().ShowUnexported)

	a.Exec("settings pageSize 4")
	assert.Equal(t, 4, a.Explorer.State().PageSize())

	a.Exec("settings consoleMaxHistory 2")
	assert.LessOrEqual(t, a.History.Len(), 2)
}

func TestAttachLogger(t *testing.T) {
	a, _ := newApp(t)
	l := log.New()
	l.SetOutput(&bytes.Buffer{})
	a.AttachLogger(l)

	l.WithField("k", "v").Warn("careful")
	l.Debug("hidden at info")

	msgs := a.History.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "careful k=v", msgs[0].Text)
}

func TestRunProcessesInputAndQueuedWork(t *testing.T) {
	a, g := newApp(t)
	input := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, input) }()

	input <- "set Ball.Name Renamed"
	var name string
	require.Eventually(t, func() bool {
		err := a.Frame.Do(ctx, func() { name = g.Name })
		return err == nil && name == "Renamed"
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestLoadAndDump(t *testing.T) {
	s := engine.NewScene("disk")
	g := engine.NewGameObject("Crate")
	g.AddComponent(components.NewRigidbody())
	s.AddGameObject(g)
	path := filepath.Join(t.TempDir(), "crate.json")
	require.NoError(t, scene.Save(s, path))

	a, err := Load(config.NewStore(config.Defaults()), path)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, a.Dump(&buf, "Crate", 1))
	assert.Contains(t, buf.String(), ":Rigidbody")

	buf.Reset()
	require.NoError(t, a.Dump(&buf, "", 0))
	assert.Contains(t, buf.String(), "+ Crate#")

	assert.Error(t, a.Dump(&buf, "Nobody", 1))

	_, err = Load(config.NewStore(config.Defaults()), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
