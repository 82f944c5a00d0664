// Package control implements the interactive form controls: the shared
// control contract, a registry keyed on tag kind, and the concrete upload-file,
// text and choice controls.
//
// Controls are not safe for concurrent use. Every method, and every callback
// they register, runs on the event loop passed in Options.
package control

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cf-upload/internal/dictionary"
	"cf-upload/internal/dom"
	"cf-upload/internal/eventloop"
	"cf-upload/internal/flow"
	"cf-upload/internal/reader"
)

// ClassAnimateIn marks a control's container as visible.
const ClassAnimateIn = "animate-in"

var (
	// ErrUnknownControl is returned by Registry.New for an unregistered tag kind.
	ErrUnknownControl = errors.New("control: no control registered for tag")
	// ErrNoLoop is returned when Options carries no event loop.
	ErrNoLoop = errors.New("control: event loop required")
)

// Control is what the host form depends on. Each variant renders a template,
// honours animate-in requests, exposes the chosen value and can be torn down.
type Control interface {
	ID() string
	Type() string
	Tag() Tag
	Template() string
	Element() *dom.Element
	AnimateIn()
	Value() string
	Dealloc()
}

// Tag is the source definition a control is bound to.
type Tag struct {
	Name        string
	Kind        string
	Attributes  map[string]string
	Options     []string
	Placeholder string
	Value       string
}

// Attr returns the value of the first attribute in keys that is present.
func (t Tag) Attr(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := t.Attributes[k]; ok {
			return v, true
		}
	}
	return "", false
}

// AttrValue returns the first non-empty value among keys. An attribute that
// is present but blank falls through to the next key.
func (t Tag) AttrValue(keys ...string) (string, bool) {
	for _, k := range keys {
		if v := t.Attributes[k]; v != "" {
			return v, true
		}
	}
	return "", false
}

// Options configures a control.
type Options struct {
	Tag        Tag
	Bus        *flow.Bus
	Loop       eventloop.Scheduler
	Dictionary *dictionary.Dictionary
	Logger     zerolog.Logger

	// NewReader is the file-reading capability. Only file controls need it.
	NewReader reader.Factory
	// Picker is the file picker the file control listens to.
	Picker *PickerInput
	// SettleDelay is the pause between a finished read and submission.
	SettleDelay time.Duration

	// OnChoose is called once the control has a value for the host.
	OnChoose func(Control)
}

// Base carries what every control shares.
type Base struct {
	id          string
	typ         string
	tag         Tag
	template    string
	el          *dom.Element
	bus         *flow.Bus
	dict        *dictionary.Dictionary
	log         zerolog.Logger
	onChoose    func(Control)
	self        Control
	deallocated bool
}

func newBase(opts Options, typ, template string, self Control) (*Base, error) {
	el, err := dom.Parse(template)
	if err != nil {
		return nil, err
	}
	id := uuid.New().String()
	return &Base{
		id:       id,
		typ:      typ,
		tag:      opts.Tag,
		template: template,
		el:       el,
		bus:      opts.Bus,
		dict:     opts.Dictionary,
		log:      opts.Logger.With().Str("control", id).Str("type", typ).Str("field", opts.Tag.Name).Logger(),
		onChoose: opts.OnChoose,
		self:     self,
	}, nil
}

func (b *Base) ID() string            { return b.id }
func (b *Base) Type() string          { return b.typ }
func (b *Base) Tag() Tag              { return b.tag }
func (b *Base) Template() string      { return b.template }
func (b *Base) Element() *dom.Element { return b.el }

// AnimateIn marks the container visible.
func (b *Base) AnimateIn() {
	if b.deallocated {
		return
	}
	b.el.AddClass(ClassAnimateIn)
}

// Deallocated reports whether Dealloc has run.
func (b *Base) Deallocated() bool { return b.deallocated }

// Dealloc makes the control inert.
func (b *Base) Dealloc() {
	b.deallocated = true
	b.onChoose = nil
}

func (b *Base) choose() {
	if b.deallocated || b.onChoose == nil {
		return
	}
	b.onChoose(b.self)
}

func (b *Base) publish(typ flow.EventType, detail any, ch flow.Channel) {
	if b.deallocated || b.bus == nil {
		return
	}
	b.log.Debug().Str("event", string(typ)).Interface("detail", detail).Msg("publish")
	b.bus.Publish(flow.NewEvent(typ, b.id, detail), ch)
}
