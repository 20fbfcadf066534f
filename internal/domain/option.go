package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Option is one selectable answer of a question. Icon is an optional
// image URL on the asset host.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// UnmarshalJSON accepts both wire shapes the API has produced over time:
// a bare string ("A") and an object ({"label":"A","icon":"..."}).
func (o *Option) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = Option{}
		return nil
	}

	if data[0] == '"' {
		var label string
		if err := json.Unmarshal(data, &label); err != nil {
			return err
		}
		*o = Option{Label: label}
		return nil
	}

	if data[0] != '{' {
		return fmt.Errorf("option must be a string or an object, got %s", string(data))
	}

	type plain Option
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = Option(p)
	return nil
}

// HasLabel reports whether the trimmed label is non-empty.
func (o Option) HasLabel() bool {
	return strings.TrimSpace(o.Label) != ""
}

// OptionLabels returns the labels of opts in order.
func OptionLabels(opts []Option) []string {
	labels := make([]string, len(opts))
	for i, o := range opts {
		labels[i] = o.Label
	}
	return labels
}
