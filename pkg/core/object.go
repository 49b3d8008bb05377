package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Object is an insertion-ordered attribute mapping.
//
// Attribute values are one of: nil, bool, json.Number, string, []any, *Object.
// Objects are treated as immutable once a document has been parsed; the
// With/Without helpers return modified copies that share unchanged values.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// ObjectOf builds an object from alternating key/value pairs.
// It is mostly useful in tests.
func ObjectOf(pairs ...any) *Object {
	if len(pairs)%2 != 0 {
		panic("core.ObjectOf: odd number of arguments")
	}
	o := NewObject()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("core.ObjectOf: key %v is not a string", pairs[i]))
		}
		o.Set(key, NormalizeValue(pairs[i+1]))
	}
	return o
}

// Len returns the number of attributes.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the attribute names in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// String returns the value under key if it is a string.
func (o *Object) String(key string) (string, bool) {
	v, ok := o.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Number returns the value under key as a float64 if it is numeric.
func (o *Object) Number(key string) (float64, bool) {
	v, ok := o.Get(key)
	if !ok {
		return 0, false
	}
	return Float(v)
}

// Object returns the value under key if it is a nested object.
func (o *Object) Object(key string) (*Object, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	obj, ok := v.(*Object)
	return obj, ok
}

// Array returns the value under key if it is an array.
func (o *Object) Array(key string) ([]any, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	return arr, ok
}

// Set stores value under key, keeping the original position of an existing key.
// Set mutates the receiver and is meant for construction only.
func (o *Object) Set(key string, value any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Delete removes key. It mutates the receiver and is meant for construction only.
func (o *Object) Delete(key string) {
	if o == nil {
		return
	}
	if _, exists := o.values[key]; !exists {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Clone returns a shallow copy. Nested values are shared.
func (o *Object) Clone() *Object {
	c := &Object{
		keys:   make([]string, 0, o.Len()),
		values: make(map[string]any, o.Len()),
	}
	if o == nil {
		return c
	}
	c.keys = append(c.keys, o.keys...)
	for k, v := range o.values {
		c.values[k] = v
	}
	return c
}

// With returns a copy of o with key set to value.
func (o *Object) With(key string, value any) *Object {
	c := o.Clone()
	c.Set(key, value)
	return c
}

// Without returns a copy of o without the given keys.
// If none of the keys are present, o itself is returned.
func (o *Object) Without(keys ...string) *Object {
	found := false
	for _, k := range keys {
		if o.Has(k) {
			found = true
			break
		}
	}
	if !found {
		return o
	}
	c := o.Clone()
	for _, k := range keys {
		c.Delete(k)
	}
	return c
}

// Range calls fn for every attribute in order until fn returns false.
func (o *Object) Range(fn func(key string, value any) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

// Equal reports whether two objects hold the same keys in the same order
// with structurally equal values.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	if o.Len() == 0 {
		return true
	}
	for i, k := range o.keys {
		if other.keys[i] != k {
			return false
		}
		if !ValueEqual(o.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the object preserving key order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ToMap converts the object to a plain map, recursively. Key order is lost.
func (o *Object) ToMap() map[string]any {
	m := make(map[string]any, o.Len())
	o.Range(func(k string, v any) bool {
		m[k] = plainValue(v)
		return true
	})
	return m
}

func plainValue(v any) any {
	switch val := v.(type) {
	case *Object:
		return val.ToMap()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plainValue(item)
		}
		return out
	default:
		return v
	}
}

// ValueEqual compares two attribute values structurally.
// Numbers compare by numeric value, so 1 and 1.0 are equal.
func ValueEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case *Object:
		bv, ok := b.(*Object)
		return ok && av.Equal(bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		af, aok := Float(a)
		bf, bok := Float(b)
		return aok && bok && af == bf
	}
}

// Float converts a numeric attribute value to float64.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// NormalizeValue converts Go literals into attribute values.
// Integers and floats become json.Number, maps become ordered objects
// with sorted keys, and slices become []any.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil, bool, string, json.Number, *Object:
		return val
	case int:
		return json.Number(strconv.Itoa(val))
	case int64:
		return json.Number(strconv.FormatInt(val, 10))
	case float64:
		return json.Number(strconv.FormatFloat(val, 'f', -1, 64))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = NormalizeValue(item)
		}
		return out
	case map[string]any:
		o := NewObject()
		for _, k := range sortedKeys(val) {
			o.Set(k, NormalizeValue(val[k]))
		}
		return o
	default:
		return fmt.Sprint(val)
	}
}
