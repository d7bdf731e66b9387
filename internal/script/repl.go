// Package script evaluates Go snippets against the live scene.
package script

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"scenedebug/internal/engine"
	"scenedebug/internal/inspect"

	log "github.com/sirupsen/logrus"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

var ErrPanic = errors.New("script panicked")

// Standard packages a snippet may import.
var allowedPkgs = []string{
	"fmt/fmt",
	"math/math",
	"sort/sort",
	"strconv/strconv",
	"strings/strings",
	"time/time",
}

// REPL is a persistent interpreter: declarations from one Eval are
// visible to the next. It must only be used from the frame loop.
type REPL struct {
	interp   *interp.Interpreter
	explorer *inspect.Explorer
	mutator  *inspect.Mutator
}

// New creates an interpreter with package scene already imported.
func New(x *inspect.Explorer, m *inspect.Mutator) (*REPL, error) {
	r := &REPL{explorer: x, mutator: m}
	r.interp = interp.New(interp.Options{})
	if err := r.interp.Use(restrictedStdlib()); err != nil {
		return nil, fmt.Errorf("script: stdlib: %w", err)
	}
	if err := r.interp.Use(r.exports()); err != nil {
		return nil, fmt.Errorf("script: exports: %w", err)
	}
	if _, err := r.interp.Eval(`import "scene"`); err != nil {
		return nil, fmt.Errorf("script: import scene: %w", err)
	}
	return r, nil
}

func restrictedStdlib() interp.Exports {
	restricted := interp.Exports{}
	for _, key := range allowedPkgs {
		if syms, ok := stdlib.Symbols[key]; ok {
			restricted[key] = syms
		}
	}
	return restricted
}

func (r *REPL) exports() interp.Exports {
	return interp.Exports{
		"scene/scene": {
			"Find":      reflect.ValueOf(r.find),
			"FindByUID": reflect.ValueOf(r.findByUID),
			"Objects":   reflect.ValueOf(r.objects),
			"Get":       reflect.ValueOf(r.get),
			"Set":       reflect.ValueOf(r.set),
			"Log":       reflect.ValueOf(r.log),

			"GameObject":    reflect.ValueOf((*engine.GameObject)(nil)),
			"GameObjectRef": reflect.ValueOf((*engine.GameObjectRef)(nil)),
		},
	}
}

func (r *REPL) find(name string) *engine.GameObject {
	s := r.explorer.Scene()
	if s == nil {
		return nil
	}
	if g := s.FindByName(name); g != nil && g.Alive() {
		return g
	}
	return nil
}

func (r *REPL) findByUID(uid uint64) *engine.GameObject {
	s := r.explorer.Scene()
	if s == nil {
		return nil
	}
	if g := s.FindByUID(uid); g != nil && g.Alive() {
		return g
	}
	return nil
}

func (r *REPL) objects() []*engine.GameObject {
	s := r.explorer.Scene()
	if s == nil {
		return nil
	}
	var out []*engine.GameObject
	for g := range s.All() {
		if g.Alive() {
			out = append(out, g)
		}
	}
	return out
}

// get returns the value at path, or nil when it does not resolve.
func (r *REPL) get(path string) any {
	c, err := inspect.ParsePath(r.explorer.Scene(), path, r.explorer.Options().MaxDepth)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("scene.Get")
		return nil
	}
	v, ok := c.Evaluate()
	if !ok || !v.CanInterface() {
		return nil
	}
	return v.Interface()
}

func (r *REPL) set(path string, value any) error {
	c, err := inspect.ParsePath(r.explorer.Scene(), path, r.explorer.Options().MaxDepth)
	if err != nil {
		return err
	}
	if s, ok := value.(string); ok {
		return r.mutator.SetFromString(c, s)
	}
	return r.mutator.Set(c, value)
}

func (r *REPL) log(format string, args ...any) {
	log.WithField("source", "script").Infof(format, args...)
}

// Eval runs src and formats the value of its last expression. Statements
// without a value yield "".
func (r *REPL) Eval(src string) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = "", fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}
	v, err := r.interp.Eval(src)
	if err != nil {
		return "", err
	}
	if !v.IsValid() {
		return "", nil
	}
	return r.explorer.FormatValue(v), nil
}
