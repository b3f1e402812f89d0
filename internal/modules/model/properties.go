package model

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

var ErrInvalidProperties = errors.New("invalid properties")

// Properties is an open string-keyed map whose values are restricted to
// JSON primitives: string, number, bool or null.
type Properties map[string]any

func (p Properties) Validate() error {
	for k, v := range p {
		switch v.(type) {
		case nil, string, bool, float64, float32, int, int32, int64, uint, uint32, uint64:
		default:
			return fmt.Errorf("%w: key %q holds %T", ErrInvalidProperties, k, v)
		}
	}
	return nil
}

func (p *Properties) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := sonic.Unmarshal(b, &m); err != nil {
		return err
	}
	if err := Properties(m).Validate(); err != nil {
		return err
	}
	*p = m
	return nil
}

// Clone returns a shallow copy; values are primitives so this is a deep copy.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
