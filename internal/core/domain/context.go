package domain

import (
	"encoding/json"
	"slices"
)

// Context holds the situational values visible to every plugin during one
// run. It has no mutators.
type Context struct {
	values Attributes
}

// NewContext creates a context. The map is copied.
func NewContext(values map[string]Value) Context {
	c := Context{values: make(Attributes, len(values))}
	for k, v := range values {
		c.values[k] = v
	}
	return c
}

// ContextFromMap builds a context from decoded scalars.
func ContextFromMap(m map[string]any) (Context, error) {
	values, err := attributesFromMap(m)
	if err != nil {
		return Context{}, err
	}
	return Context{values: values}, nil
}

// Get returns the named value.
func (c Context) Get(name string) (Value, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Float returns a numeric value. Booleans read as 1 or 0.
func (c Context) Float(name string) (float64, bool) {
	v, ok := c.values[name]
	if !ok {
		return 0, false
	}
	return v.AsFloat(), true
}

// Flag returns a value's truthiness and whether it was present.
func (c Context) Flag(name string) (bool, bool) {
	v, ok := c.values[name]
	if !ok {
		return false, false
	}
	return v.Truthy(), true
}

// Has reports whether the key is present.
func (c Context) Has(name string) bool {
	_, ok := c.values[name]
	return ok
}

// Keys returns the context keys in sorted order.
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of values.
func (c Context) Len() int { return len(c.values) }

// MarshalJSON encodes the context as a flat JSON object.
func (c Context) MarshalJSON() ([]byte, error) {
	values := c.values
	if values == nil {
		values = Attributes{}
	}
	return json.Marshal(values)
}

// UnmarshalJSON decodes a flat JSON object of numbers and booleans.
func (c *Context) UnmarshalJSON(data []byte) error {
	var values Attributes
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*c = NewContext(values)
	return nil
}
