package types

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wireObject rebuilds the response-side {name: {"value": v}} object from
// the request-side property list.
func wireObject(t *testing.T, list []WireProperty) json.RawMessage {
	t.Helper()
	var obj Properties
	for _, wp := range list {
		obj.Set(wp.Property, map[string]any{"value": wp.Value})
	}
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	return data
}

func TestEncodeProperties(t *testing.T) {
	p := NewProperties("lastname", "Lovelace", "firstname", "Ada", "age", 36)

	got := EncodeProperties(p)
	assert.Equal(t, []WireProperty{
		{Property: "lastname", Value: "Lovelace"},
		{Property: "firstname", Value: "Ada"},
		{Property: "age", Value: int64(36)},
	}, got)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"property":"lastname","value":"Lovelace"},
		{"property":"firstname","value":"Ada"},
		{"property":"age","value":36}
	]`, string(data))
}

func TestEncodeEmpty(t *testing.T) {
	got := EncodeProperties(Properties{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPropertiesRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   Properties
	}{
		{name: "empty", in: Properties{}},
		{name: "strings", in: NewProperties("email", "a@example.com", "firstname", "Ada")},
		{name: "mixed scalars", in: NewProperties("score", 12.5, "subscribed", true, "notes", nil, "zip", "02139")},
		{name: "reverse alphabetical order", in: NewProperties("z", "1", "m", "2", "a", "3")},
		{name: "int", in: NewProperties("employees", 5)},
		{name: "int64 beyond float precision", in: NewProperties("hs_object_id", int64(9007199254740993))},
		{name: "negative and unsigned", in: NewProperties("delta", -42, "count", uint32(7))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := DecodeProperties(wireObject(t, EncodeProperties(tt.in)))
			assert.Equal(t, tt.in.Keys(), out.Keys())
			assert.Equal(t, tt.in.Map(), out.Map())
		})
	}
}

func TestDecodeProperties(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKeys []string
		wantMap  map[string]any
	}{
		{name: "absent", raw: ``, wantKeys: []string{}, wantMap: map[string]any{}},
		{name: "null", raw: `null`, wantKeys: []string{}, wantMap: map[string]any{}},
		{name: "empty object", raw: `{}`, wantKeys: []string{}, wantMap: map[string]any{}},
		{name: "not an object", raw: `[1,2]`, wantKeys: []string{}, wantMap: map[string]any{}},
		{
			name:     "versioned values",
			raw:      `{"lastmodifieddate": {"value": "1484026585538", "versions": [{"value": "1484026585538"}]}, "email": {"value": "a@example.com"}}`,
			wantKeys: []string{"lastmodifieddate", "email"},
			wantMap:  map[string]any{"lastmodifieddate": "1484026585538", "email": "a@example.com"},
		},
		{
			name:     "bare scalars",
			raw:      `{"email": "a@example.com", "hs_object_id": "51"}`,
			wantKeys: []string{"email", "hs_object_id"},
			wantMap:  map[string]any{"email": "a@example.com", "hs_object_id": "51"},
		},
		{
			name:     "object without value",
			raw:      `{"odd": {"versions": []}}`,
			wantKeys: []string{"odd"},
			wantMap:  map[string]any{"odd": nil},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeProperties(json.RawMessage(tt.raw))
			assert.Equal(t, tt.wantKeys, got.Keys())
			assert.Equal(t, tt.wantMap, got.Map())
		})
	}
}

func TestPropertiesSetKeepsPosition(t *testing.T) {
	p := NewProperties("a", 1, "b", 2, "c", 3)
	p.Set("a", 10)
	p.Set("d", 4)
	assert.Equal(t, []string{"a", "b", "c", "d"}, p.Keys())
	v, ok := p.Get("a")
	assert.True(t, ok)
	assert.Equal(t, int64(10), v)
}

func TestPropertiesNumbersStayExact(t *testing.T) {
	var p Properties
	require.NoError(t, json.Unmarshal([]byte(`{"vid": 9007199254740993, "score": 12.5, "nested": {"n": 3}}`), &p))

	vid, _ := p.Get("vid")
	assert.Equal(t, int64(9007199254740993), vid)
	score, _ := p.Get("score")
	assert.Equal(t, 12.5, score)
	nested, _ := p.Get("nested")
	assert.Equal(t, map[string]any{"n": json.Number("3")}, nested)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"vid":9007199254740993,"score":12.5,"nested":{"n":3}}`, string(data))

	decoded := DecodeProperties(json.RawMessage(`{"hs_object_id": {"value": 9007199254740993}, "bare": 5}`))
	id, _ := decoded.Get("hs_object_id")
	assert.Equal(t, int64(9007199254740993), id)
	bare, _ := decoded.Get("bare")
	assert.Equal(t, int64(5), bare)
}

func TestPropertiesSetNormalizesIntegers(t *testing.T) {
	p := NewProperties("a", 1, "b", int32(2), "c", uint64(3), "d", 1.5)
	assert.Equal(t, map[string]any{"a": int64(1), "b": int64(2), "c": int64(3), "d": 1.5}, p.Map())

	var big Properties
	big.Set("u", uint64(math.MaxUint64))
	u, _ := big.Get("u")
	assert.Equal(t, uint64(math.MaxUint64), u)
}

func TestPropertiesDeleteAndWithout(t *testing.T) {
	p := NewProperties("a", 1, "b", 2, "c", 3)
	q := p.Without("b")
	assert.Equal(t, []string{"a", "b", "c"}, p.Keys(), "Without must not modify the receiver")
	assert.Equal(t, []string{"a", "c"}, q.Keys())

	p.Delete("a")
	p.Delete("missing")
	assert.Equal(t, []string{"b", "c"}, p.Keys())
	assert.False(t, p.Has("a"))
	assert.Equal(t, 2, p.Len())
}

func TestPropertiesMerge(t *testing.T) {
	p := NewProperties("email", "a@example.com", "city", "London")
	p.Merge(NewProperties("city", "Paris", "phone", "555"))
	assert.Equal(t, []string{"email", "city", "phone"}, p.Keys())
	assert.Equal(t, map[string]any{"email": "a@example.com", "city": "Paris", "phone": "555"}, p.Map())
}

func TestPropertiesJSON(t *testing.T) {
	var p Properties
	require.NoError(t, json.Unmarshal([]byte(`{"z": "last", "a": 1, "m": {"nested": true}}`), &p))
	assert.Equal(t, []string{"z", "a", "m"}, p.Keys())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"last","a":1,"m":{"nested":true}}`, string(data))

	var empty Properties
	data, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &p))
}

func TestNewPropertiesOddArgs(t *testing.T) {
	p := NewProperties("a", 1, "dangling")
	assert.Equal(t, []string{"a", "dangling"}, p.Keys())
	v, ok := p.Get("dangling")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestOrderedMembers(t *testing.T) {
	members, err := OrderedMembers(json.RawMessage(`{"b": [1], "a": {"x": 1}}`))
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "b", members[0].Key)
	assert.JSONEq(t, `[1]`, string(members[0].Value))
	assert.Equal(t, "a", members[1].Key)

	_, err = OrderedMembers(json.RawMessage(`"str"`))
	assert.Error(t, err)
	_, err = OrderedMembers(json.RawMessage(`{"a": 1`))
	assert.Error(t, err)
}
