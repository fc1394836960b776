package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is an attribute or context value: either a number or a boolean.
// The zero Value is the number 0.
type Value struct {
	num    float64
	flag   bool
	isBool bool
}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{num: f}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{flag: b, isBool: true}
}

// ValueOf converts a decoded scalar (from JSON, YAML, or koanf) into a Value.
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case float64:
		return Number(v), nil
	case float32:
		return Number(float64(v)), nil
	case int:
		return Number(float64(v)), nil
	case int8:
		return Number(float64(v)), nil
	case int16:
		return Number(float64(v)), nil
	case int32:
		return Number(float64(v)), nil
	case int64:
		return Number(float64(v)), nil
	case uint:
		return Number(float64(v)), nil
	case uint8:
		return Number(float64(v)), nil
	case uint16:
		return Number(float64(v)), nil
	case uint32:
		return Number(float64(v)), nil
	case uint64:
		return Number(float64(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", v.String(), err)
		}
		return Number(f), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T (want number or bool)", x)
	}
}

// IsBool reports whether v holds a boolean.
func (v Value) IsBool() bool {
	return v.isBool
}

// Float returns the numeric value. ok is false for booleans.
func (v Value) Float() (f float64, ok bool) {
	if v.isBool {
		return 0, false
	}
	return v.num, true
}

// AsFloat returns the numeric value, reading booleans as 1 or 0.
func (v Value) AsFloat() float64 {
	if v.isBool {
		if v.flag {
			return 1
		}
		return 0
	}
	return v.num
}

// Bool returns the boolean value. ok is false for numbers.
func (v Value) Bool() (b bool, ok bool) {
	if !v.isBool {
		return false, false
	}
	return v.flag, true
}

// Truthy reports whether v is true or a non-zero number.
func (v Value) Truthy() bool {
	if v.isBool {
		return v.flag
	}
	return v.num != 0
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.isBool != o.isBool {
		return false
	}
	if v.isBool {
		return v.flag == o.flag
	}
	return v.num == o.num
}

// Interface returns the value as a float64 or bool.
func (v Value) Interface() any {
	if v.isBool {
		return v.flag
	}
	return v.num
}

func (v Value) String() string {
	if v.isBool {
		return strconv.FormatBool(v.flag)
	}
	return strconv.FormatFloat(v.num, 'g', -1, 64)
}

// MarshalJSON encodes the value as a JSON number or boolean.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON accepts a JSON number or boolean.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Attributes maps attribute names to values.
type Attributes map[string]Value

func attributesFromMap(m map[string]any) (Attributes, error) {
	out := make(Attributes, len(m))
	for k, raw := range m {
		v, err := ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func (a Attributes) clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func (a Attributes) equal(b Attributes) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}
