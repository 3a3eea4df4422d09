package rowstream

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedStringUnmarshalBareString(t *testing.T) {
	var f FixedString
	require.NoError(t, json.Unmarshal([]byte(`"hello"`), &f))
	assert.Equal(t, "hello", f.Value)
}

func TestFixedStringUnmarshalWrapperObject(t *testing.T) {
	var f FixedString
	require.NoError(t, json.Unmarshal([]byte(`{"FixedString":"hello"}`), &f))
	assert.Equal(t, "hello", f.Value)
}

func TestFixedStringMarshalAlwaysWraps(t *testing.T) {
	// output uses the wrapper-object form even when the input was bare
	var f FixedString
	require.NoError(t, json.Unmarshal([]byte(`"hello"`), &f))

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"FixedString":"hello"}`, string(out))
}

func TestFixedStringUnmarshalErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"missing field", `{"OtherField":"hello"}`},
		{"non-string field", `{"FixedString":42}`},
		{"wrong type", `42`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f FixedString
			assert.Error(t, json.Unmarshal([]byte(tc.data), &f))
		})
	}
}

func TestFixedStringInStruct(t *testing.T) {
	type record struct {
		Name string      `json:"name"`
		Tag  FixedString `json:"tag"`
	}

	// bare form on input
	var r record
	require.NoError(t, json.Unmarshal([]byte(`{"name":"n1","tag":"t1"}`), &r))
	assert.Equal(t, "t1", r.Tag.String())

	// wrapper form on output
	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"n1","tag":{"FixedString":"t1"}}`, string(out))
}
