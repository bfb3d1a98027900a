package marshkit

import (
	"fmt"
	"reflect"
)

// Bind copies a loaded mapping into a struct of type T, matching keys by the
// same rule StructAccessor uses on dump (marshkit tag, then json tag, then
// field name). It is the natural body for a post-load hook that constructs
// an application object from the validated mapping.
func Bind[T any](m map[string]any) (T, error) {
	var zero T
	rt := reflect.TypeOf(zero)
	if rt == nil {
		return zero, fmt.Errorf("marshkit: Bind requires a concrete struct type")
	}
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return zero, fmt.Errorf("marshkit: Bind requires struct T, got %s", rt.Kind())
	}
	rv := reflect.New(rt).Elem()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "-" || key == "" {
			continue
		}
		val, ok := m[key]
		if !ok {
			continue
		}
		fv := rv.Field(i)
		if val == nil {
			switch fv.Kind() {
			case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
				fv.Set(reflect.Zero(fv.Type()))
			}
			continue
		}
		vv := reflect.ValueOf(val)
		switch {
		case vv.Type().AssignableTo(fv.Type()):
			fv.Set(vv)
		case numericKind(vv.Kind()) && numericKind(fv.Kind()) && vv.Type().ConvertibleTo(fv.Type()):
			fv.Set(vv.Convert(fv.Type()))
		default:
			return zero, fmt.Errorf("marshkit: Bind field %q: cannot assign %T to %s", key, val, fv.Type())
		}
	}
	out, ok := rv.Interface().(T)
	if !ok {
		// T was a pointer type
		if p, pok := rv.Addr().Interface().(T); pok {
			return p, nil
		}
		return zero, fmt.Errorf("marshkit: Bind produced unexpected type")
	}
	return out, nil
}

// numericKind gates Bind's conversion branch to numeric-to-numeric.
// reflect's ConvertibleTo also reports int-to-string as convertible, and
// that conversion yields a one-rune string, not a rendering of the number.
func numericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// MustBind is like Bind but panics on error.
func MustBind[T any](m map[string]any) T {
	v, err := Bind[T](m)
	if err != nil {
		panic(err)
	}
	return v
}
