package contract

import (
	"errors"
	"fmt"
)

// ErrInvalidInput indicates a malformed input descriptor list.
var ErrInvalidInput = errors.New("invalid input descriptor")

// Kind identifies the widget an input renders as and the type its
// answer decodes to.
type Kind string

const (
	KindText    Kind = "text"
	KindConfirm Kind = "confirm"
	KindSelect  Kind = "select"
)

// Input describes one requested value in an ask message. Inputs are
// immutable once built; construct them with Text, Confirm, Select, or
// MultiSelect.
type Input struct {
	Name     string   `json:"name"`
	Type     Kind     `json:"type"`
	Label    string   `json:"label,omitempty"`
	Options  []string `json:"options,omitempty"`
	Multiple bool     `json:"multiple,omitempty"`
}

// Text requests a free-form string.
func Text(name, label string) Input {
	return Input{Name: name, Type: KindText, Label: label}
}

// Confirm requests a yes/no answer.
func Confirm(name, label string) Input {
	return Input{Name: name, Type: KindConfirm, Label: label}
}

// Select requests a single choice from options.
func Select(name, label string, options ...string) Input {
	return Input{Name: name, Type: KindSelect, Label: label, Options: options}
}

// MultiSelect requests zero or more choices from options.
func MultiSelect(name, label string, options ...string) Input {
	return Input{Name: name, Type: KindSelect, Label: label, Options: options, Multiple: true}
}

// Validate checks a descriptor list: names must be non-empty and unique,
// kinds must be known, and selects must carry at least one option.
func Validate(inputs []Input) error {
	seen := make(map[string]struct{}, len(inputs))
	for i, in := range inputs {
		if in.Name == "" {
			return fmt.Errorf("%w: input %d has no name", ErrInvalidInput, i)
		}
		if _, dup := seen[in.Name]; dup {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidInput, in.Name)
		}
		seen[in.Name] = struct{}{}

		switch in.Type {
		case KindText, KindConfirm:
		case KindSelect:
			if len(in.Options) == 0 {
				return fmt.Errorf("%w: select %q has no options", ErrInvalidInput, in.Name)
			}
		default:
			return fmt.Errorf("%w: unknown kind %q for %q", ErrInvalidInput, in.Type, in.Name)
		}
	}
	return nil
}
