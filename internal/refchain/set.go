package refchain

import (
	"fmt"
	"math"
	"reflect"
)

// Set writes value at the location the chain points to. Fields, slice and
// array elements and map entries are written directly; a Property is
// written through a Set<Name> method if the owner has one. Identity hops
// and pseudo-properties cannot be written.
func (c *Chain) Set(value any) (err error) {
	last, ok := c.Last()
	if !ok {
		return ErrEmpty
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrNotSettable, r)
		}
	}()

	var parent reflect.Value
	if c.Len() > 1 {
		parent, err = c.Parent().Resolve()
		if err != nil {
			return err
		}
	}

	switch last.Kind {
	case KindField:
		target, err := field(parent, last.Name)
		if err != nil {
			return err
		}
		return assign(target, value)
	case KindEnumerableItem:
		v, err := indirect(parent)
		if err != nil {
			return err
		}
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return fmt.Errorf("%w: cannot write into %s", ErrNotSettable, v.Type())
		}
		target, err := item(v, last.Index)
		if err != nil {
			return err
		}
		return assign(target, value)
	case KindMapEntry:
		v, err := indirect(parent)
		if err != nil {
			return err
		}
		if v.Kind() != reflect.Map {
			return fmt.Errorf("%w: %s is not a map", ErrNoMember, v.Type())
		}
		if v.IsNil() {
			return fmt.Errorf("%w: nil map", ErrNotSettable)
		}
		k, err := convert(last.Key, v.Type().Key())
		if err != nil {
			return err
		}
		val, err := convert(value, v.Type().Elem())
		if err != nil {
			return err
		}
		v.SetMapIndex(k, val)
		return nil
	case KindProperty:
		m, ok := findMethod(parent, "Set"+last.Name)
		if !ok || m.Type().NumIn() != 1 {
			return fmt.Errorf("%w: no Set%s method", ErrNotSettable, last.Name)
		}
		arg, err := convert(value, m.Type().In(0))
		if err != nil {
			return err
		}
		out := m.Call([]reflect.Value{arg})
		if len(out) > 0 && out[len(out)-1].Type().Implements(errorType) && !out[len(out)-1].IsNil() {
			return out[len(out)-1].Interface().(error)
		}
		return nil
	}
	return fmt.Errorf("%w: %s segments are read-only", ErrNotSettable, last.Kind)
}

func assign(target reflect.Value, value any) error {
	if !target.CanSet() {
		return fmt.Errorf("%w: %s is unexported or not addressable", ErrNotSettable, target.Type())
	}
	v, err := convert(value, target.Type())
	if err != nil {
		return err
	}
	target.Set(v)
	return nil
}

// convert makes value usable where type t is expected. Numeric kinds
// convert among themselves; integers never silently become strings.
func convert(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: nil for %s", ErrType, t)
	}
	v, ok := value.(reflect.Value)
	if !ok {
		v = reflect.ValueOf(value)
	}
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if isNumber(v.Kind()) && isNumber(t.Kind()) {
		if !fits(v, t) {
			return reflect.Value{}, fmt.Errorf("%w: %v does not fit %s", ErrType, v, t)
		}
		return v.Convert(t), nil
	}
	if v.Kind() == t.Kind() && v.Type().ConvertibleTo(t) {
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s for %s", ErrType, v.Type(), t)
}

// fits reports whether numeric v converts to t without wrapping,
// truncating a fraction or overflowing.
func fits(v reflect.Value, t reflect.Type) bool {
	zero := reflect.Zero(t)
	switch {
	case v.CanInt():
		i := v.Int()
		switch {
		case zero.CanInt():
			return !zero.OverflowInt(i)
		case zero.CanUint():
			return i >= 0 && !zero.OverflowUint(uint64(i))
		}
		return true
	case v.CanUint():
		u := v.Uint()
		switch {
		case zero.CanInt():
			return u <= math.MaxInt64 && !zero.OverflowInt(int64(u))
		case zero.CanUint():
			return !zero.OverflowUint(u)
		}
		return true
	}
	f := v.Float()
	switch {
	case zero.CanInt():
		return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 && !zero.OverflowInt(int64(f))
	case zero.CanUint():
		return f == math.Trunc(f) && f >= 0 && f < math.MaxUint64 && !zero.OverflowUint(uint64(f))
	}
	return !zero.OverflowFloat(f)
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
