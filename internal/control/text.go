package control

import (
	"errors"
	"strings"

	"cf-upload/internal/dictionary"
	"cf-upload/internal/dom"
	"cf-upload/internal/flow"
)

// ErrEmptyValue is returned when a required text answer is blank.
var ErrEmptyValue = errors.New("control: empty value")

const textTemplate = `<cf-input-text><cf-input-text-value></cf-input-text-value></cf-input-text>`

// Text is a free-text answer.
type Text struct {
	*Base
	value    string
	required bool
	display  *dom.Element
}

// NewText builds a text control. The tag attribute "required" rejects blank answers.
func NewText(opts Options) (*Text, error) {
	t := &Text{}
	base, err := newBase(opts, "InputTextUI", textTemplate, t)
	if err != nil {
		return nil, err
	}
	t.Base = base
	_, t.required = opts.Tag.Attr("required", "cf-required")
	t.display = t.el.First("cf-input-text-value")
	return t, nil
}

// Placeholder is the prompt shown before an answer is typed.
func (t *Text) Placeholder() string {
	if t.tag.Placeholder != "" {
		return t.tag.Placeholder
	}
	return t.dict.Get(dictionary.TextPlaceholder)
}

func (t *Text) Value() string { return t.value }

// Submit records value and hands it to the host. Blank answers to required
// fields are rejected on both flow channels.
func (t *Text) Submit(value string) error {
	if t.deallocated {
		return nil
	}
	if t.required && strings.TrimSpace(value) == "" {
		t.publish(flow.UserInputInvalid, flow.DTO{ErrorText: t.Placeholder()}, flow.ChannelAll)
		return ErrEmptyValue
	}
	t.value = value
	t.display.SetText(value)
	t.choose()
	return nil
}
