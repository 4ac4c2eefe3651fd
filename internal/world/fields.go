package world

import (
	"bytes"
	"encoding/json"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// Fields holds the members of a stored entity that its Go type does not
// declare. They are kept on decode and written back on encode so records
// from other writers survive a read-modify-write.
type Fields map[string]json.RawMessage

var declaredKeys sync.Map // reflect.Type -> map[string]struct{}

func keysOf(t reflect.Type) map[string]struct{} {
	if cached, ok := declaredKeys.Load(t); ok {
		return cached.(map[string]struct{})
	}
	keys := make(map[string]struct{}, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		keys[name] = struct{}{}
	}
	declaredKeys.Store(t, keys)
	return keys
}

// decodeFields unmarshals data into v, a pointer to a method-free struct,
// and returns the members v's type does not declare.
func decodeFields(data []byte, v any) (Fields, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	known := keysOf(reflect.TypeOf(v).Elem())
	var extra Fields
	for k, msg := range raw {
		if _, ok := known[k]; ok {
			continue
		}
		if extra == nil {
			extra = Fields{}
		}
		extra[k] = msg
	}
	return extra, nil
}

// encodeFields marshals v and appends the members of extra after the
// declared ones, in key order. Members v already wrote win.
func encodeFields(v any, extra Fields) ([]byte, error) {
	out, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return out, err
	}
	known := keysOf(reflect.TypeOf(v))

	var buf bytes.Buffer
	buf.Write(out[:len(out)-1])
	wrote := len(out) > 2
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		if _, ok := known[k]; ok {
			continue
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		if wrote {
			buf.WriteByte(',')
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(extra[k])
		wrote = true
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
