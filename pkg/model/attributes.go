package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind is the primitive type carried by an attribute Value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	}
	return ""
}

// Value is a single attribute value. It is restricted to a closed set of
// primitive kinds so that every value has a total textual rendering.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

func StringValue(s string) Value { return Value{kind: KindString, s: s} }
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) Equal(o Value) bool { return v == o }

// String renders the value as text.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return v.s
}

// Interface returns the underlying Go value.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	}
	return v.s
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch t := raw.(type) {
	case string:
		*v = StringValue(t)
	case bool:
		*v = BoolValue(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			*v = IntValue(i)
			return nil
		}
		f, err := t.Float64()
		if err != nil {
			return err
		}
		*v = FloatValue(f)
	default:
		return fmt.Errorf("attribute value must be a string, number or boolean, got %s", string(b))
	}

	return nil
}

// Attributes holds the open-ended contextual metadata of an event.
type Attributes map[string]Value

// Get returns the value for key and whether it is present.
func (a Attributes) Get(key string) (Value, bool) {
	if a == nil {
		return Value{}, false
	}
	v, ok := a[key]
	return v, ok
}

// Text returns the textual rendering of key, or an empty string when the
// attribute is missing.
func (a Attributes) Text(key string) string {
	if v, ok := a.Get(key); ok {
		return v.String()
	}
	return ""
}

func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// UnmarshalJSON skips null members so that they read as missing.
func (a *Attributes) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*a = nil
		return nil
	}

	members := make(map[string]json.RawMessage)
	if err := json.Unmarshal(b, &members); err != nil {
		return err
	}

	out := make(Attributes, len(members))
	for k, raw := range members {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("attribute %q: %s", k, err)
		}
		out[k] = v
	}
	*a = out

	return nil
}
