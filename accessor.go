package marshkit

import (
	"reflect"
	"strings"
)

// AttributeAccessor reads a member generically off a source object during
// dump. Implementations exist per source representation; the pipeline is
// handed one at build time instead of baking reflection into the core.
type AttributeAccessor interface {
	// Get returns the member named name on obj, or def when absent.
	Get(obj any, name string, def any) any
}

// MapAccessor reads from map[string]any sources.
type MapAccessor struct{}

func (MapAccessor) Get(obj any, name string, def any) any {
	m, ok := obj.(map[string]any)
	if !ok {
		return def
	}
	v, ok := m[name]
	if !ok {
		return def
	}
	return v
}

// FuncAccessor adapts a lookup function into an AttributeAccessor.
type FuncAccessor func(obj any, name string) (any, bool)

func (f FuncAccessor) Get(obj any, name string, def any) any {
	v, ok := f(obj, name)
	if !ok {
		return def
	}
	return v
}

// StructAccessor reads exported struct fields by resolved key. Pointer
// sources are dereferenced; nil pointers yield the default.
type StructAccessor struct{}

func (StructAccessor) Get(obj any, name string, def any) any {
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return def
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return def
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		if ResolveStructKey(sf) == name {
			return rv.Field(i).Interface()
		}
	}
	return def
}

// defaultAccessor dispatches on the source representation: mappings by key,
// structs by resolved tag, anything else is treated as having no members.
type defaultAccessor struct{}

func (defaultAccessor) Get(obj any, name string, def any) any {
	switch obj.(type) {
	case map[string]any:
		return MapAccessor{}.Get(obj, name, def)
	case nil:
		return def
	}
	return StructAccessor{}.Get(obj, name, def)
}

// ResolveStructKey applies the repository-wide rule to resolve a struct
// field's external key.
// Priority: marshkit:"name=..." > json tag name > field name; "-" disables
// the field.
func ResolveStructKey(sf reflect.StructField) string {
	if mt := sf.Tag.Get("marshkit"); mt != "" {
		for _, p := range strings.Split(mt, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}
