package valuetype

import "encoding/json"

// Value is the result of a coercion. It is either present (possibly holding a
// falsy value such as 0, "" or false) or absent.
type Value struct {
	v  any
	ok bool
}

// Some wraps a present value.
func Some(v any) Value { return Value{v: v, ok: true} }

// None is the absent value.
func None() Value { return Value{} }

// Get returns the value and whether it is present.
func (v Value) Get() (any, bool) { return v.v, v.ok }

// Present reports whether the value is set.
func (v Value) Present() bool { return v.ok }

// Interface returns the wrapped value, or nil when absent.
func (v Value) Interface() any {
	if !v.ok {
		return nil
	}
	return v.v
}

// MarshalJSON renders an absent value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}
