package ast

import (
	"reflect"
	"unicode"
	"unicode/utf8"
)

var (
	nodeType      = reflect.TypeOf((*Node)(nil)).Elem()
	statementType = reflect.TypeOf((*Statement)(nil)).Elem()
)

// Export converts the tree under f into nested maps and slices ready for
// encoding/json. Each node becomes an object with its id, kind and span plus
// its exported fields. Parent links, raw text and cached facts are left out.
// A node reached a second time is emitted as {"$ref": id}. Nodes registered
// in the arena but not reachable from any field are listed under "detached".
func Export(f *File) map[string]any {
	e := &exporter{seen: make(map[NodeID]bool)}
	out := e.node(f).(map[string]any)
	var detached []any
	for _, n := range f.Nodes() {
		if !e.seen[n.ID()] {
			detached = append(detached, e.node(n))
		}
	}
	if len(detached) > 0 {
		out["detached"] = detached
	}
	return out
}

type exporter struct {
	seen map[NodeID]bool
}

func (e *exporter) node(n Node) any {
	id := n.ID()
	if e.seen[id] {
		return map[string]any{"$ref": int(id)}
	}
	e.seen[id] = true

	obj := map[string]any{
		"id":    int(id),
		"kind":  reflect.TypeOf(n).Elem().Name(),
		"range": n.Range().Span(),
	}
	e.fields(reflect.ValueOf(n).Elem(), obj)
	return obj
}

// fields copies the exported fields of v into obj, flattening embedded
// structs such as Body and SignalLike.
func (e *exporter) fields(v reflect.Value, obj map[string]any) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := v.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			if sf.IsExported() {
				e.fields(fv, obj)
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		val, ok := e.value(fv)
		if !ok {
			continue
		}
		obj[jsonName(sf.Name)] = val
	}
}

// value converts a field value. Empty slices and nil pointers are omitted.
func (e *exporter) value(v reflect.Value) (any, bool) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, false
		}
		if n, ok := v.Interface().(Node); ok {
			return e.node(n), true
		}
		return e.value(v.Elem())
	case reflect.Slice:
		if v.Len() == 0 {
			return nil, false
		}
		elem := v.Type().Elem()
		if elem.Implements(nodeType) || elem == statementType {
			list := make([]any, 0, v.Len())
			for i := 0; i < v.Len(); i++ {
				if val, ok := e.value(v.Index(i)); ok {
					list = append(list, val)
				}
			}
			return list, true
		}
		return v.Interface(), true
	case reflect.String:
		if v.Len() == 0 {
			return nil, false
		}
		return v.String(), true
	case reflect.Bool:
		if !v.Bool() {
			return nil, false
		}
		return true, true
	case reflect.Int, reflect.Int32, reflect.Int64:
		return v.Int(), true
	}
	return nil, false
}

func jsonName(field string) string {
	r, size := utf8.DecodeRuneInString(field)
	return string(unicode.ToLower(r)) + field[size:]
}
