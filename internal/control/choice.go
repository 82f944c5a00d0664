package control

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"cf-upload/internal/dictionary"
)

// ErrNoOptions is returned for a choice tag without options.
var ErrNoOptions = errors.New("control: choice needs at least one option")

// Choice picks one of a fixed list of options.
type Choice struct {
	*Base
	options  []string
	selected int
}

func choiceTemplate(options []string) string {
	var b strings.Builder
	b.WriteString("<cf-choice>")
	for _, o := range options {
		b.WriteString("<cf-button>")
		b.WriteString(html.EscapeString(o))
		b.WriteString("</cf-button>")
	}
	b.WriteString("</cf-choice>")
	return b.String()
}

// NewChoice builds a choice control from the tag's options.
func NewChoice(opts Options) (*Choice, error) {
	if len(opts.Tag.Options) == 0 {
		return nil, ErrNoOptions
	}
	c := &Choice{options: append([]string(nil), opts.Tag.Options...), selected: -1}
	base, err := newBase(opts, "OptionsListUI", choiceTemplate(c.options), c)
	if err != nil {
		return nil, err
	}
	c.Base = base
	return c, nil
}

// Options returns the available options.
func (c *Choice) Options() []string { return c.options }

// Placeholder is the prompt shown above the options.
func (c *Choice) Placeholder() string {
	if c.tag.Placeholder != "" {
		return c.tag.Placeholder
	}
	return c.dict.Get(dictionary.ChoicePlaceholder)
}

func (c *Choice) Value() string {
	if c.selected < 0 {
		return ""
	}
	return c.options[c.selected]
}

// Choose selects option i and hands it to the host.
func (c *Choice) Choose(i int) error {
	if c.deallocated {
		return nil
	}
	if i < 0 || i >= len(c.options) {
		return fmt.Errorf("control: option %d out of range [0,%d)", i, len(c.options))
	}
	c.selected = i
	for j, btn := range c.el.ElementsByTagName("cf-button") {
		if j == i {
			btn.AddClass("selected")
		} else {
			btn.RemoveClass("selected")
		}
	}
	c.choose()
	return nil
}
