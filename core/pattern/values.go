package pattern

import (
	"bytes"
	"encoding/json"
	"sort"
)

// FieldValue is one observed placeholder value.
type FieldValue struct {
	Name  string
	Value string
	// Missing marks a field whose value is absent. Missing fields are
	// skipped when building entry keys and fail Format.
	Missing bool
}

// Values maps field names to values in template order.
type Values []FieldValue

// Get returns the value for name. Missing fields report false.
func (v Values) Get(name string) (string, bool) {
	for _, fv := range v {
		if fv.Name == name {
			if fv.Missing {
				return "", false
			}
			return fv.Value, true
		}
	}
	return "", false
}

// Map returns the present values as a plain map.
func (v Values) Map() map[string]string {
	m := make(map[string]string, len(v))
	for _, fv := range v {
		if !fv.Missing {
			m[fv.Name] = fv.Value
		}
	}
	return m
}

// Equal reports whether both value sets hold the same fields in the same order.
func (v Values) Equal(other Values) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if v[i] != other[i] {
			return false
		}
	}
	return true
}

// FromMap orders a plain map by the given field names. Names without a value
// are marked missing; keys not in order are appended sorted.
func FromMap(m map[string]string, order []string) Values {
	values := make(Values, 0, len(m))
	known := make(map[string]struct{}, len(order))
	for _, name := range order {
		known[name] = struct{}{}
		v, ok := m[name]
		values = append(values, FieldValue{Name: name, Value: v, Missing: !ok})
	}

	var extra []string
	for name := range m {
		if _, ok := known[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		values = append(values, FieldValue{Name: name, Value: m[name]})
	}
	return values
}

// MarshalJSON encodes the present values as a JSON object, keeping order.
func (v Values) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, fv := range v {
		if fv.Missing {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(fv.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(fv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
