package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Action is the proposed decision being evaluated.
//
// An Action is an immutable value: the With* methods return a modified
// copy and never touch the receiver, so a plugin cannot change the action
// it was handed or any earlier snapshot of it.
type Action struct {
	kind    string
	content string
	attrs   Attributes
}

// NewAction creates an action. The attribute map is copied.
func NewAction(kind, content string, attrs map[string]Value) Action {
	a := Action{kind: kind, content: content, attrs: make(Attributes, len(attrs))}
	for k, v := range attrs {
		a.attrs[k] = v
	}
	return a
}

// ActionFromMap builds an action from a flat mapping such as
// {"kind": "decision", "content": "...", "selfishness": 1.0}.
// "type" is accepted as an alias for "kind". Every other key must hold a
// number or boolean and becomes an attribute. A nested "attributes" map is
// merged in as well.
func ActionFromMap(m map[string]any) (Action, error) {
	a := Action{attrs: Attributes{}}
	for k, raw := range m {
		switch k {
		case "kind", "type":
			s, ok := raw.(string)
			if !ok {
				return Action{}, fmt.Errorf("%s must be a string, got %T", k, raw)
			}
			a.kind = s
		case "content":
			s, ok := raw.(string)
			if !ok {
				return Action{}, fmt.Errorf("content must be a string, got %T", raw)
			}
			a.content = s
		case "attributes":
			nested, ok := raw.(map[string]any)
			if !ok {
				return Action{}, fmt.Errorf("attributes must be a mapping, got %T", raw)
			}
			attrs, err := attributesFromMap(nested)
			if err != nil {
				return Action{}, err
			}
			for ak, av := range attrs {
				a.attrs[ak] = av
			}
		default:
			v, err := ValueOf(raw)
			if err != nil {
				return Action{}, fmt.Errorf("attribute %q: %w", k, err)
			}
			a.attrs[k] = v
		}
	}
	return a, nil
}

// Kind returns the action discriminator.
func (a Action) Kind() string { return a.kind }

// Content returns the free-form text of the action.
func (a Action) Content() string { return a.content }

// Attribute returns the named attribute.
func (a Action) Attribute(name string) (Value, bool) {
	v, ok := a.attrs[name]
	return v, ok
}

// Float returns a numeric attribute. Booleans read as 1 or 0.
func (a Action) Float(name string) (float64, bool) {
	v, ok := a.attrs[name]
	if !ok {
		return 0, false
	}
	return v.AsFloat(), true
}

// Has reports whether the attribute is set.
func (a Action) Has(name string) bool {
	_, ok := a.attrs[name]
	return ok
}

// Keys returns the attribute names in sorted order.
func (a Action) Keys() []string {
	keys := make([]string, 0, len(a.attrs))
	for k := range a.attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Attributes returns a copy of the attribute map.
func (a Action) Attributes() Attributes {
	return a.attrs.clone()
}

// WithKind returns a copy with the kind replaced.
func (a Action) WithKind(kind string) Action {
	a.attrs = a.attrs.clone()
	a.kind = kind
	return a
}

// WithContent returns a copy with the content replaced.
func (a Action) WithContent(content string) Action {
	a.attrs = a.attrs.clone()
	a.content = content
	return a
}

// WithAttribute returns a copy with one attribute set.
func (a Action) WithAttribute(name string, v Value) Action {
	a.attrs = a.attrs.clone()
	a.attrs[name] = v
	return a
}

// WithNumber is shorthand for WithAttribute(name, Number(f)).
func (a Action) WithNumber(name string, f float64) Action {
	return a.WithAttribute(name, Number(f))
}

// WithBool is shorthand for WithAttribute(name, Bool(b)).
func (a Action) WithBool(name string, b bool) Action {
	return a.WithAttribute(name, Bool(b))
}

// WithoutAttribute returns a copy with one attribute removed.
func (a Action) WithoutAttribute(name string) Action {
	a.attrs = a.attrs.clone()
	delete(a.attrs, name)
	return a
}

// IsZero reports whether a is the zero Action, as opposed to an action
// built by NewAction or ActionFromMap that happens to be empty.
func (a Action) IsZero() bool {
	return a.kind == "" && a.content == "" && a.attrs == nil
}

// Equal reports whether two actions have the same kind, content and attributes.
func (a Action) Equal(b Action) bool {
	return a.kind == b.kind && a.content == b.content && a.attrs.equal(b.attrs)
}

// ToMap flattens the action back into the mapping accepted by ActionFromMap.
func (a Action) ToMap() map[string]any {
	m := make(map[string]any, len(a.attrs)+2)
	for k, v := range a.attrs {
		m[k] = v.Interface()
	}
	m["kind"] = a.kind
	m["content"] = a.content
	return m
}

type actionJSON struct {
	Kind       string     `json:"kind"`
	Content    string     `json:"content"`
	Attributes Attributes `json:"attributes"`
}

// MarshalJSON encodes the action as {"kind", "content", "attributes"}.
func (a Action) MarshalJSON() ([]byte, error) {
	attrs := a.attrs
	if attrs == nil {
		attrs = Attributes{}
	}
	return json.Marshal(actionJSON{Kind: a.kind, Content: a.content, Attributes: attrs})
}

// UnmarshalJSON decodes the structured form produced by MarshalJSON.
func (a *Action) UnmarshalJSON(data []byte) error {
	var raw actionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = NewAction(raw.Kind, raw.Content, raw.Attributes)
	return nil
}
