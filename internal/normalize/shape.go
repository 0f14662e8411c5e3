package normalize

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// Shape tags the top-level form of a raw engine result.
type Shape int

const (
	OtherShape Shape = iota
	ListShape
	MapShape
)

func (s Shape) String() string {
	switch s {
	case ListShape:
		return "list"
	case MapShape:
		return "map"
	default:
		return "other"
	}
}

// RawResult is an engine result decoded at the boundary into a tagged union.
// Exactly one of List, Map, Other is meaningful, as selected by Shape.
type RawResult struct {
	Shape Shape
	List  []any
	Map   map[string]any
	Other any
}

// Decode classifies v. Slices and arrays become ListShape, maps with string
// keys become MapShape, everything else (strings, numbers, nil, byte slices,
// structs) is OtherShape. Typed containers such as []map[string]any are
// converted so downstream code only sees []any and map[string]any.
func Decode(v any) RawResult {
	if l, ok := asList(v); ok {
		return RawResult{Shape: ListShape, List: l}
	}
	if m, ok := asMap(v); ok {
		return RawResult{Shape: MapShape, Map: m}
	}
	return RawResult{Shape: OtherShape, Other: v}
}

// DecodeJSON decodes engine output delivered as JSON text. Text that is not
// valid JSON is kept verbatim as an OtherShape string.
func DecodeJSON(data []byte) RawResult {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return RawResult{Shape: OtherShape, Other: string(data)}
	}
	return Decode(v)
}

func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case []any:
		return t, true
	case []byte, json.RawMessage:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return []any{}, true
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return t, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// Text coerces v to its text form: strings as-is, nil and empty sequences as
// "", scalars in their natural formatting, containers as compact JSON.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case json.RawMessage:
		return string(t)
	case fmt.Stringer:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t)
	}
	if l, ok := asList(v); ok && len(l) == 0 {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
