package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
	KindList
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is the tagged union stored per field in a value-set. The zero Value
// is the empty string.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	flag bool
	list []string
}

// String wraps a string value.
func String(v string) Value { return Value{kind: KindString, str: v} }

// Number wraps a numeric value.
func Number(v float64) Value { return Value{kind: KindNumber, num: v} }

// Bool wraps a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, flag: v} }

// List wraps the selected values of a checkbox group. A nil slice becomes an
// empty list.
func List(v ...string) Value {
	out := make([]string, len(v))
	copy(out, v)
	return Value{kind: KindList, list: out}
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// Str returns the raw string of a string value.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the raw number of a number value.
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// Flag returns the raw boolean of a bool value.
func (v Value) Flag() (bool, bool) { return v.flag, v.kind == KindBool }

// Items returns a copy of the selected values of a list value.
func (v Value) Items() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return append([]string{}, v.list...), true
}

// Text coerces the value to the string the validation rules measure.
func (v Value) Text() string {
	switch v.kind {
	case KindNumber:
		return FormatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindList:
		return strings.Join(v.list, ",")
	default:
		return v.str
	}
}

// Float coerces the value to the number formulas see. Strings are parsed after
// trimming; anything unparseable, non-finite, boolean or list-valued is 0.
func (v Value) Float() float64 {
	var out float64
	switch v.kind {
	case KindNumber:
		out = v.num
	case KindString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0
		}
		out = parsed
	default:
		return 0
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0
	}
	return out
}

// IsEmpty reports whether the value counts as "no input": a blank string, an
// empty list or false. Numbers are never empty.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindString:
		return strings.TrimSpace(v.str) == ""
	case KindList:
		return len(v.list) == 0
	case KindBool:
		return !v.flag
	default:
		return false
	}
}

// Equal reports whether two values hold the same variant and content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.flag == other.flag
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != other.list[i] {
				return false
			}
		}
		return true
	default:
		return v.str == other.str
	}
}

func (v Value) GoString() string {
	return fmt.Sprintf("schema.Value{%s:%q}", v.kind, v.Text())
}

// Interface returns the value as a plain Go value (string, float64, bool or
// []string), which is what templates and JSON encoders expect.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBool:
		return v.flag
	case KindList:
		return append([]string{}, v.list...)
	default:
		return v.str
	}
}

// MarshalJSON encodes the value as its natural JSON type.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a JSON string, number, boolean or string array.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromAny converts a decoded JSON/YAML scalar or string list into a Value.
func FromAny(raw any) (Value, error) {
	switch typed := raw.(type) {
	case nil:
		return String(""), nil
	case Value:
		return typed, nil
	case string:
		return String(typed), nil
	case bool:
		return Bool(typed), nil
	case float64:
		return Number(typed), nil
	case float32:
		return Number(float64(typed)), nil
	case int:
		return Number(float64(typed)), nil
	case int64:
		return Number(float64(typed)), nil
	case []string:
		return List(typed...), nil
	case []any:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			s, ok := item.(string)
			if !ok {
				return Value{}, errors.New("schema: list values must be strings")
			}
			items = append(items, s)
		}
		return List(items...), nil
	default:
		return Value{}, fmt.Errorf("schema: unsupported value type %T", raw)
	}
}

// FormatNumber renders a number the way derived fields store it: the shortest
// decimal that round-trips, with negative zero printed as 0. Magnitudes of
// 1e21 and above or below 1e-6 use exponent notation without zero padding
// ("1e+21", "1.5e-7").
func FormatNumber(n float64) string {
	if n == 0 {
		return "0"
	}
	if abs := math.Abs(n); abs >= 1e21 || abs < 1e-6 {
		mantissa, exp, _ := strings.Cut(strconv.FormatFloat(n, 'e', -1, 64), "e")
		digits := strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + exp[:1] + digits
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Values maps field ids to their current value. A missing key means the field
// has not been given a value yet.
type Values map[string]Value

// Get returns the value stored for id.
func (v Values) Get(id string) (Value, bool) {
	value, ok := v[id]
	return value, ok
}

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for id, value := range v {
		if value.kind == KindList {
			value = List(value.list...)
		}
		out[id] = value
	}
	return out
}

// Equal reports whether both value-sets hold the same keys and values.
func (v Values) Equal(other Values) bool {
	if len(v) != len(other) {
		return false
	}
	for id, value := range v {
		peer, ok := other[id]
		if !ok || !value.Equal(peer) {
			return false
		}
	}
	return true
}
