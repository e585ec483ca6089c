package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Standard property names with dedicated accessors on Contact.
const (
	PropertyEmail     = "email"
	PropertyUserToken = "usertoken"
	PropertyVID       = "vid"
)

// WireProperty is one entry of the list-of-properties encoding used by
// write endpoints: {"property": name, "value": v}.
type WireProperty struct {
	Property string `json:"property"`
	Value    any    `json:"value"`
}

// Properties is an insertion-ordered map from property name to value.
// Values are whatever the wire carries: string, int64, float64, bool,
// nil, or a structured value passed through untouched.
//
// Numbers are kept exact. Set stores any Go integer as int64, and a
// decoded JSON number is an int64 when it is integral and fits, a float64
// otherwise. Numbers nested inside structured values decode as
// json.Number.
//
// The zero value is an empty map ready for use.
type Properties struct {
	keys   []string
	values map[string]any
}

// NewProperties builds a Properties from alternating name, value arguments.
// A trailing name without a value is stored with a nil value.
func NewProperties(kv ...any) Properties {
	var p Properties
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			name = fmt.Sprint(kv[i])
		}
		var value any
		if i+1 < len(kv) {
			value = kv[i+1]
		}
		p.Set(name, value)
	}
	return p
}

// Set stores value under name. A new name is appended to the key order;
// an existing name keeps its position.
func (p *Properties) Set(name string, value any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[name]; !ok {
		p.keys = append(p.keys, name)
	}
	value = normalizeNumber(value)
	p.values[name] = value
}

// Get returns the value stored under name.
func (p Properties) Get(name string) (any, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Has reports whether name is present.
func (p Properties) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Delete removes name. Deleting a missing name is a no-op.
func (p *Properties) Delete(name string) {
	if _, ok := p.values[name]; !ok {
		return
	}
	delete(p.values, name)
	for i, k := range p.keys {
		if k == name {
			p.keys = append(p.keys[:i:i], p.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the property names in insertion order.
func (p Properties) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len returns the number of properties.
func (p Properties) Len() int {
	return len(p.keys)
}

// Merge copies every entry of other into p, in other's order.
func (p *Properties) Merge(other Properties) {
	for _, k := range other.keys {
		p.Set(k, other.values[k])
	}
}

// Clone returns an independent copy. Structured values are shared.
func (p Properties) Clone() Properties {
	var out Properties
	out.Merge(p)
	return out
}

// Without returns a copy of p with name removed.
func (p Properties) Without(name string) Properties {
	out := p.Clone()
	out.Delete(name)
	return out
}

// Map returns the properties as a plain, unordered map.
func (p Properties) Map() map[string]any {
	out := make(map[string]any, len(p.keys))
	for _, k := range p.keys {
		out[k] = p.values[k]
	}
	return out
}

// MarshalJSON encodes the properties as a JSON object in key order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat JSON object, keeping member order.
func (p *Properties) UnmarshalJSON(data []byte) error {
	members, err := OrderedMembers(data)
	if err != nil {
		return err
	}
	*p = Properties{}
	for _, m := range members {
		v, err := decodeValue(m.Value)
		if err != nil {
			return fmt.Errorf("property %q: %w", m.Key, err)
		}
		p.Set(m.Key, v)
	}
	return nil
}

// EncodeProperties converts a flat map into the wire's property list,
// one entry per key in insertion order. Values are not validated.
func EncodeProperties(p Properties) []WireProperty {
	out := make([]WireProperty, 0, p.Len())
	for _, k := range p.keys {
		out = append(out, WireProperty{Property: k, Value: p.values[k]})
	}
	return out
}

// DecodeProperties flattens the wire's properties object,
// {name: {"value": v, ...}}, into name -> v. Absent, null or malformed
// input decodes to an empty map. A member whose wire value is a bare
// scalar (as in v3 search results) decodes to that scalar.
func DecodeProperties(raw json.RawMessage) Properties {
	var out Properties
	members, err := OrderedMembers(raw)
	if err != nil {
		return out
	}
	for _, m := range members {
		out.Set(m.Key, propertyValue(m.Value))
	}
	return out
}

// propertyValue extracts the value of one wire property.
func propertyValue(raw json.RawMessage) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil
		}
		inner, ok := wrapped["value"]
		if !ok {
			return nil
		}
		v, _ := decodeValue(inner)
		return v
	}
	v, _ := decodeValue(trimmed)
	return v
}

// decodeValue decodes one JSON value without losing integer precision.
func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// normalizeNumber maps Go integers and top-level json.Number values onto
// int64 or float64. Other values are returned unchanged.
func normalizeNumber(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint:
		if uint64(n) <= math.MaxInt64 {
			return int64(n)
		}
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n)
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return v
}

// Member is one name/value pair of a JSON object.
type Member struct {
	Key   string
	Value json.RawMessage
}

// errNotObject is returned by OrderedMembers for non-object input.
var errNotObject = errors.New("json value is not an object")

// OrderedMembers splits a JSON object into its members in document order.
// Empty input and null decode to no members.
func OrderedMembers(raw json.RawMessage) ([]Member, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}
	var members []Member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errNotObject
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		members = append(members, Member{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return members, nil
}
