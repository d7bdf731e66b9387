// Package app wires the toolkit together and owns the frame loop.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"scenedebug/internal/config"
	"scenedebug/internal/console"
	"scenedebug/internal/debugserver"
	"scenedebug/internal/engine"
	"scenedebug/internal/frame"
	"scenedebug/internal/inspect"
	"scenedebug/internal/scene"
	"scenedebug/internal/script"
	"scenedebug/internal/watch"

	log "github.com/sirupsen/logrus"
)

const frameQueueSize = 64

type App struct {
	Settings *config.Store
	Scene    *engine.Scene
	Explorer *inspect.Explorer
	Mutator  *inspect.Mutator
	Watches  *watch.List
	Script   *script.REPL
	History  *console.History
	Console  *console.Console
	Frame    *frame.Queue
	Server   *debugserver.Server

	// Out receives console command output.
	Out io.Writer

	frames   uint64
	recovers uint64
}

// New builds an app around an already loaded scene. A nil scene starts
// empty.
func New(settings *config.Store, s *engine.Scene) (*App, error) {
	if s == nil {
		s = engine.NewScene("untitled")
	}
	st := settings.Get()

	a := &App{
		Settings: settings,
		Scene:    s,
		Mutator:  inspect.NewMutator(),
		History:  console.NewHistory(st.ConsoleMaxHistory, st.ConsoleCollapse),
		Frame:    frame.NewQueue(frameQueueSize),
		Out:      os.Stdout,
	}
	a.Explorer = inspect.NewExplorer(s, inspect.NewState(st.PageSize), nil, explorerOptions(st))
	a.Watches = watch.NewList(a.Explorer)

	repl, err := script.New(a.Explorer, a.Mutator)
	if err != nil {
		return nil, err
	}
	a.Script = repl

	a.Console = console.New(console.Env{
		History:  a.History,
		Explorer: a.Explorer,
		Mutator:  a.Mutator,
		Watches:  a.Watches,
		Script:   a.Script,
		Settings: a.Settings,
	})
	a.Server = debugserver.New(a.Frame, a.Console)

	a.Frame.OnPanic = func(r any) { a.recovered("queued work", r) }

	settings.OnChange.AddListener(a.applySettings)
	return a, nil
}

// Load reads a scene file and builds an app around it.
func Load(settings *config.Store, path string) (*App, error) {
	s, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"path": path, "objects": s.Count()}).Info("Scene loaded")
	return New(settings, s)
}

func explorerOptions(st config.Settings) inspect.Options {
	return inspect.Options{
		MaxDepth:           st.MaxDepth,
		EvaluateProperties: st.EvaluateProperties,
		ShowProperties:     st.ShowProperties,
		ShowUnexported:     st.ShowUnexported,
		SortAlphabetically: st.SortAlphabetically,
	}
}

func (a *App) applySettings(st config.Settings) {
	a.Explorer.SetOptions(explorerOptions(st))
	a.Explorer.State().SetPageSize(st.PageSize)
	a.History.SetLimits(st.ConsoleMaxHistory, st.ConsoleCollapse)
	if lvl, err := log.ParseLevel(st.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
}

// AttachLogger routes l's entries into the console history and applies
// the configured level to it.
func (a *App) AttachLogger(l *log.Logger) {
	l.AddHook(console.NewHook(a.History))
	lvl, err := log.ParseLevel(a.Settings.Get().LogLevel)
	if err != nil {
		l.WithError(err).Warn("Bad log level, using info")
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
}

// Exec runs one console line on the calling goroutine, which must be the
// frame loop. Errors are printed rather than returned.
func (a *App) Exec(line string) {
	a.guard("console", func() {
		if err := a.Console.Exec(a.Out, line); err != nil {
			fmt.Fprintf(a.Out, "error: %v\n", err)
			log.WithField("command", line).Debug(err)
		}
	})
}

// Step advances one frame: scene update, queued debug work, watches.
func (a *App) Step(dt float32) {
	a.frames++
	a.guard("scene update", func() { a.Scene.Update(dt) })
	a.guard("queued work", func() { a.Frame.Drain() })
	a.guard("watches", a.Watches.Refresh)
}

// guard runs fn and survives a panic in it. The explorer's expansion
// state is cleared so a bad path cannot panic again next frame.
func (a *App) guard(stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			a.recovered(stage, r)
		}
	}()
	fn()
}

// recovered is called on the frame loop for every panic the loop survived,
// including ones inside queued debug requests.
func (a *App) recovered(stage string, r any) {
	a.recovers++
	a.Explorer.Reset()
	log.WithFields(log.Fields{"stage": stage, "frame": a.frames}).Errorf("Recovered from panic: %v", r)
}

func (a *App) Frames() uint64   { return a.frames }
func (a *App) Recovers() uint64 { return a.recovers }

// Run ticks at the configured frame rate until ctx is done, executing
// lines from input between frames. The debug server runs alongside when
// an address is configured.
func (a *App) Run(ctx context.Context, input <-chan string) error {
	defer a.Frame.Close()
	a.Scene.Start()

	if addr := a.Settings.Get().HTTPAddr; addr != "" {
		go func() {
			if err := a.Server.ListenAndServe(ctx, addr); err != nil {
				log.WithError(err).Error("Debug server stopped")
			}
		}()
	}

	rate := a.Settings.Get().FrameRate
	tick := time.NewTicker(time.Second / time.Duration(rate))
	defer tick.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			log.WithField("frames", a.frames).Info("Frame loop stopped")
			return nil
		case line, ok := <-input:
			if !ok {
				input = nil
				continue
			}
			a.Exec(line)
		case now := <-tick.C:
			a.Step(float32(now.Sub(last).Seconds()))
			last = now
			if r := a.Settings.Get().FrameRate; r != rate {
				rate = r
				tick.Reset(time.Second / time.Duration(rate))
			}
		}
	}
}

// Dump writes the tree under path, expanded depth levels, to w. An empty
// path dumps the scene roots.
func (a *App) Dump(w io.Writer, path string, depth int) error {
	if path == "" {
		return inspect.WriteText(w, a.Explorer.Build())
	}
	c, err := inspect.ParsePath(a.Scene, path, a.Explorer.Options().MaxDepth)
	if err != nil {
		return err
	}
	return inspect.WriteText(w, []*inspect.Node{a.Explorer.BuildTree(c, depth)})
}
