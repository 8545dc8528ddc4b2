package viaplay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Object is a decoded JSON object that remembers key order. Nested objects
// decode to *Object, arrays to []any and numbers to json.Number.
//
// All accessors are nil-safe so hypermedia graphs can be walked without
// checking every hop.
type Object struct {
	keys   []string
	values map[string]any
}

func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// DecodeObject strictly decodes raw as a single JSON object.
func DecodeObject(raw []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("invalid character after top-level value")
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("top-level value is %T, not an object", v)
	}
	return obj, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T", keyTok)
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q", delim)
}

func (o *Object) UnmarshalJSON(raw []byte) error {
	decoded, err := DecodeObject(raw)
	if err != nil {
		return err
	}
	*o = *decoded
	return nil
}

func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Set adds or replaces key. New keys are appended to the order.
func (o *Object) Set(key string, v any) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.values[key]
	return ok
}

func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Obj returns the nested object at key, or nil.
func (o *Object) Obj(key string) *Object {
	v, _ := o.Get(key)
	obj, _ := v.(*Object)
	return obj
}

// Path walks nested objects.
func (o *Object) Path(keys ...string) *Object {
	cur := o
	for _, k := range keys {
		cur = cur.Obj(k)
	}
	return cur
}

func (o *Object) Array(key string) []any {
	v, _ := o.Get(key)
	arr, _ := v.([]any)
	return arr
}

// Objects returns the object entries of the array at key, skipping others.
func (o *Object) Objects(key string) []*Object {
	arr := o.Array(key)
	out := make([]*Object, 0, len(arr))
	for _, v := range arr {
		if obj, ok := v.(*Object); ok {
			out = append(out, obj)
		}
	}
	return out
}

// String renders scalars at key as a string; objects and arrays give "".
func (o *Object) String(key string) string {
	v, _ := o.Get(key)
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// Truthy reports whether the value at key is present and truthy: not null,
// false, zero, empty string, empty array or empty object.
func (o *Object) Truthy(key string) bool {
	v, ok := o.Get(key)
	return ok && truthy(v)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case []any:
		return len(t) > 0
	case *Object:
		return t.Len() > 0
	}
	return true
}

// hasFlag reports whether system.flags contains flag.
func hasFlag(o *Object, flag string) bool {
	for _, f := range o.Obj("system").Array("flags") {
		if s, ok := f.(string); ok && s == flag {
			return true
		}
	}
	return false
}
