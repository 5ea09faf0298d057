package firemon

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// Record is a JSON object returned by the API.
type Record map[string]any

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// ID returns the "id" field as an int.
func (r Record) ID() int {
	return r.Int("id")
}

// Int returns key as an int, or 0.
func (r Record) Int(key string) int {
	return toInt(r[key])
}

// Str returns key as a string, or "" when missing or null.
func (r Record) Str(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns key as a bool, or false.
func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Map returns the nested object at key, or nil.
func (r Record) Map(key string) Record {
	if m, ok := r[key].(map[string]any); ok {
		return Record(m)
	}
	if m, ok := r[key].(Record); ok {
		return m
	}
	return nil
}

// Slice returns the array at key, or nil.
func (r Record) Slice(key string) []any {
	s, _ := r[key].([]any)
	return s
}

// Records returns the objects in the array at key. Non-object entries are
// skipped.
func (r Record) Records(key string) []Record {
	var out []Record
	for _, item := range r.Slice(key) {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// Name is the display name of the record: its name, else its artifactId,
// else its id.
func (r Record) Name() string {
	for _, key := range []string{"name", "artifactId", "id"} {
		if s := r.Str(key); s != "" {
			return s
		}
	}
	return ""
}

// String implements fmt.Stringer.
func (r Record) String() string {
	return r.Name()
}

// Matches reports whether every key of filter is present in r with an
// equal value. Scalars compare by their string form so that 21, 21.0 and
// "21" are equal.
func (r Record) Matches(filter map[string]any) bool {
	for k, want := range filter {
		got, ok := r[k]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// Decode copies the record into a struct using its json tags.
func (r Record) Decode(v any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           v,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(r)); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return deepCopy(map[string]any(r)).(map[string]any)
}

// Without returns a copy of the record without the given keys.
func (r Record) Without(keys ...string) Record {
	out := r.Clone()
	if out == nil {
		out = Record{}
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Keys returns the record keys in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case Record:
		return Record(deepCopy(map[string]any(t)).(map[string]any))
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	}
	return v
}

func valuesEqual(a, b any) bool {
	if isScalar(a) && isScalar(b) {
		return scalarString(a) == scalarString(b)
	}
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, float64, float32, int, int32, int64, uint, uint32, uint64, json.Number:
		return true
	}
	return false
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return "<nil>"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}

// normalize round-trips v through JSON so that Go values compare equal to
// decoded API values.
func normalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func toInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case float32:
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case int32:
		return int(t)
	case json.Number:
		i, _ := t.Int64()
		return int(i)
	case string:
		i, _ := strconv.Atoi(t)
		return i
	}
	return 0
}
