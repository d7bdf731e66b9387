package inspect

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"scenedebug/internal/engine"
	"scenedebug/internal/refchain"
	"scenedebug/internal/scene"

	rl "github.com/gen2brain/raylib-go/raylib"
	log "github.com/sirupsen/logrus"
)

const maxUndoStack = 50

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrUnsupported   = errors.New("cannot parse a value of this type")
)

type undoState struct {
	chain *refchain.Chain
	prev  reflect.Value
}

// Mutator writes values through chains and remembers the previous value
// of each write.
type Mutator struct {
	undoStack []undoState
}

func NewMutator() *Mutator {
	return &Mutator{}
}

// SetFromString parses text as the current value's type and writes it.
func (m *Mutator) SetFromString(c *refchain.Chain, text string) error {
	cur, err := c.Resolve()
	if err != nil {
		return err
	}
	val, err := ParseValue(cur.Type(), text)
	if err != nil {
		return err
	}
	return m.set(c, cur, val)
}

// Set writes value through c. Numeric values are converted to the target
// type.
func (m *Mutator) Set(c *refchain.Chain, value any) error {
	cur, err := c.Resolve()
	if err != nil {
		return err
	}
	return m.set(c, cur, value)
}

func (m *Mutator) set(c *refchain.Chain, cur reflect.Value, value any) error {
	if !cur.CanInterface() {
		return fmt.Errorf("%w: %s is unexported", refchain.ErrNotSettable, c)
	}
	prev := reflect.New(cur.Type()).Elem()
	prev.Set(cur)
	if err := c.Set(value); err != nil {
		return err
	}
	m.addUndoState(undoState{chain: c, prev: prev})
	log.WithField("path", c.String()).Debug("Value changed")
	return nil
}

func (m *Mutator) addUndoState(state undoState) {
	// Cap stack size
	if len(m.undoStack) >= maxUndoStack {
		m.undoStack = m.undoStack[1:]
	}
	m.undoStack = append(m.undoStack, state)
}

// Undo restores the value replaced by the most recent write and returns
// the chain it was written through. Entries whose chain no longer
// resolves are dropped with an error.
func (m *Mutator) Undo() (*refchain.Chain, error) {
	if len(m.undoStack) == 0 {
		return nil, ErrNothingToUndo
	}
	// Pop last state
	state := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]

	if err := state.chain.Set(state.prev); err != nil {
		return state.chain, fmt.Errorf("undo %s: %w", state.chain, err)
	}
	return state.chain, nil
}

func (m *Mutator) Len() int { return len(m.undoStack) }

// ParseValue converts text into a value of type t. Vectors are written
// "x,y,z", colors as names or #rrggbb[aa], references as #uid or none.
func ParseValue(t reflect.Type, text string) (reflect.Value, error) {
	text = strings.TrimSpace(text)
	switch t {
	case reflect.TypeFor[rl.Color]():
		c, err := scene.ParseColor(text)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(c), nil
	case reflect.TypeFor[rl.Vector2](), reflect.TypeFor[rl.Vector3](), reflect.TypeFor[rl.Vector4]():
		return parseVector(t, text)
	case reflect.TypeFor[engine.GameObjectRef]():
		if text == "none" || text == "0" {
			return reflect.ValueOf(engine.GameObjectRef{}), nil
		}
		uid, err := strconv.ParseUint(strings.TrimPrefix(text, "#"), 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("reference %q: %w", text, err)
		}
		return reflect.ValueOf(engine.GameObjectRef{UID: uid}), nil
	}

	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(text, 0, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(text, 0, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(text, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetFloat(f)
	case reflect.String:
		if unq, err := strconv.Unquote(text); err == nil {
			text = unq
		}
		out.SetString(text)
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if text != "null" && text != "nil" {
			return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnsupported, t)
		}
	default:
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnsupported, t)
	}
	return out, nil
}

func parseVector(t reflect.Type, text string) (reflect.Value, error) {
	text = strings.Trim(text, "()[] ")
	parts := strings.Split(text, ",")
	if len(parts) != t.NumField() {
		return reflect.Value{}, fmt.Errorf("%s wants %d comma-separated numbers", t.Name(), t.NumField())
	}
	out := reflect.New(t).Elem()
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%s component %d: %w", t.Name(), i, err)
		}
		out.Field(i).SetFloat(f)
	}
	return out, nil
}
