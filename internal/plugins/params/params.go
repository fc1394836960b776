// Package params decodes plugin descriptor params into typed structs.
package params

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Decode decodes raw into out, a pointer to a struct with mapstructure
// tags. Scalars are converted where unambiguous ("0.5" into a float64) and
// unknown keys are rejected.
func Decode(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		ZeroFields:       false,
	})
	if err != nil {
		return fmt.Errorf("params decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}

// Float returns a pointer to f, for optional numeric params.
func Float(f float64) *float64 {
	return &f
}
