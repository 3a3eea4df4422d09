package rowstream

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// FixedString wraps a fixed-width text value. On the wire it is exactly N raw
// bytes with no length prefix, N being known from the schema; read it with
// rowbinary.Decoder.FixedString.
//
// In JSON interchange both a bare string and the wrapper object
// {"FixedString": "..."} are accepted on input, but output always uses the
// wrapper-object form. Existing consumers depend on this asymmetry, so it is
// preserved.
type FixedString struct {
	Value string
}

// NewFixedString wraps s.
func NewFixedString(s string) FixedString {
	return FixedString{Value: s}
}

func (f FixedString) String() string {
	return f.Value
}

// MarshalJSON always emits the wrapper-object form.
func (f FixedString) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"FixedString": f.Value})
}

// UnmarshalJSON accepts either a bare string or the wrapper-object form.
func (f *FixedString) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		f.Value = v
		return nil
	case map[string]interface{}:
		field, ok := v["FixedString"]
		if !ok {
			return errors.New("rowstream: no FixedString field")
		}
		s, ok := field.(string)
		if !ok {
			return errors.New("rowstream: FixedString field is not a string")
		}
		f.Value = s
		return nil
	default:
		return errors.Errorf("rowstream: cannot unmarshal %T into FixedString", raw)
	}
}
