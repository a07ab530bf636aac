// Package timex holds time helpers shared by the config loaders.
package timex

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// Duration is a time.Duration that decodes from JSON either as a string
// accepted by time.ParseDuration ("10s", "1m30s") or as integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	r := gjson.ParseBytes(b)
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.Number:
		d.Duration = time.Duration(r.Int())
		return nil
	case gjson.String:
		v, err := time.ParseDuration(r.Str)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", r.Str, err)
		}
		d.Duration = v
		return nil
	}
	return fmt.Errorf("invalid duration %s", r.Raw)
}
