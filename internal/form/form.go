// Package form hosts a sequence of controls: it builds each step's control
// through the registry, records the chosen values and advances.
package form

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"cf-upload/internal/config"
	"cf-upload/internal/control"
	"cf-upload/internal/dictionary"
	"cf-upload/internal/eventloop"
	"cf-upload/internal/flow"
	"cf-upload/internal/reader"
)

// ErrClosed is returned when starting a closed form.
var ErrClosed = errors.New("form: closed")

// Answer is the value recorded for one field.
type Answer struct {
	Name  string `json:"name" yaml:"name" msgpack:"name"`
	Kind  string `json:"kind" yaml:"kind" msgpack:"kind"`
	Value string `json:"value" yaml:"value" msgpack:"value"`
	Path  string `json:"path,omitempty" yaml:"path,omitempty" msgpack:"path,omitempty"`
	Size  int64  `json:"size,omitempty" yaml:"size,omitempty" msgpack:"size,omitempty"`
}

// Options wires a form to its collaborators.
type Options struct {
	Config    *config.Config
	Registry  *control.Registry
	Bus       *flow.Bus
	Loop      eventloop.Scheduler
	Logger    zerolog.Logger
	Picker    *control.PickerInput
	NewReader reader.Factory

	// OnStep is called after a new control becomes current.
	OnStep func(c control.Control)
	// OnDone is called once every field has an answer.
	OnDone func(answers []Answer)
}

// Form walks the configured fields one control at a time.
type Form struct {
	opts Options
	dict *dictionary.Dictionary
	log  zerolog.Logger

	step      int
	current   control.Control
	answers   []Answer
	lastError string
	progress  flow.ProgressState
	done      bool
	closed    bool
	unsub     []func()
}

// New validates the configuration and subscribes to control signals.
func New(opts Options) (*Form, error) {
	if opts.Config == nil {
		return nil, errors.New("form: config required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Registry == nil {
		opts.Registry = control.Default()
	}
	if opts.Bus == nil {
		opts.Bus = flow.NewBus()
	}
	if opts.Loop == nil {
		return nil, control.ErrNoLoop
	}
	f := &Form{
		opts: opts,
		dict: dictionary.New(opts.Config.Dictionary),
		log:  opts.Logger.With().Str("component", "form").Logger(),
	}
	f.unsub = append(f.unsub,
		opts.Bus.Subscribe(flow.ChannelFlow, flow.UserInputInvalid, f.onInvalid),
		opts.Bus.Subscribe(flow.ChannelDocument, flow.ProgressChange, f.onProgress),
	)
	return f, nil
}

// Start builds the first step's control.
func (f *Form) Start() error {
	if f.closed {
		return ErrClosed
	}
	return f.build()
}

func (f *Form) build() error {
	field := f.opts.Config.Fields[f.step]
	c, err := f.opts.Registry.New(control.Options{
		Tag:         field.ControlTag(),
		Bus:         f.opts.Bus,
		Loop:        f.opts.Loop,
		Dictionary:  f.dict,
		Logger:      f.opts.Logger,
		NewReader:   f.opts.NewReader,
		Picker:      f.opts.Picker,
		SettleDelay: time.Duration(f.opts.Config.SettleDelay),
		OnChoose:    f.onChoose,
	})
	if err != nil {
		return fmt.Errorf("field %q: %w", field.Name, err)
	}
	f.current = c
	f.lastError = ""
	f.progress = ""
	f.log.Debug().Str("field", field.Name).Str("control", c.Type()).Msg("step")
	if f.opts.OnStep != nil {
		f.opts.OnStep(c)
	}
	return nil
}

func (f *Form) onInvalid(ev flow.Event) {
	if f.current == nil || ev.Source != f.current.ID() {
		return
	}
	if dto, ok := ev.Detail.(flow.DTO); ok {
		f.lastError = dto.ErrorText
	}
}

func (f *Form) onProgress(ev flow.Event) {
	if f.current == nil || ev.Source != f.current.ID() {
		return
	}
	if st, ok := ev.Detail.(flow.ProgressState); ok {
		f.progress = st
		if st == flow.Busy {
			f.lastError = ""
		}
	}
}

func (f *Form) onChoose(c control.Control) {
	if f.closed || c != f.current {
		return
	}
	a := Answer{Name: c.Tag().Name, Kind: c.Tag().Kind, Value: c.Value()}
	if u, ok := c.(*control.UploadFile); ok && u.File() != nil {
		a.Size = u.File().Size()
		if lf, ok := u.File().(*reader.LocalFile); ok {
			a.Path = lf.Path
		}
	}
	f.answers = append(f.answers, a)
	f.log.Info().Str("field", a.Name).Str("value", a.Value).Msg("answered")
	// Tear the control down after its own callback has returned.
	f.opts.Loop.Post(f.advance)
}

func (f *Form) advance() {
	if f.closed || f.current == nil {
		return
	}
	f.current.Dealloc()
	f.current = nil
	f.step++
	if f.step >= len(f.opts.Config.Fields) {
		f.done = true
		if f.opts.OnDone != nil {
			f.opts.OnDone(f.Answers())
		}
		return
	}
	if err := f.build(); err != nil {
		f.log.Error().Err(err).Msg("build control")
		f.lastError = err.Error()
	}
}

// Current is the live control, or nil once the form is done.
func (f *Form) Current() control.Control { return f.current }

// Field returns the definition of the current step.
func (f *Form) Field() config.Field {
	if f.step >= len(f.opts.Config.Fields) {
		return config.Field{}
	}
	return f.opts.Config.Fields[f.step]
}

// Step returns the 1-based current step and the number of steps.
func (f *Form) Step() (int, int) {
	n := len(f.opts.Config.Fields)
	if f.step >= n {
		return n, n
	}
	return f.step + 1, n
}

// Answers returns a copy of the recorded answers.
func (f *Form) Answers() []Answer { return append([]Answer(nil), f.answers...) }

// LastError is the text of the current control's latest rejection.
func (f *Form) LastError() string { return f.lastError }

// Progress is the current control's latest progress state.
func (f *Form) Progress() flow.ProgressState { return f.progress }

// Dictionary is the form's text lookup.
func (f *Form) Dictionary() *dictionary.Dictionary { return f.dict }

// Done reports whether every field has been answered.
func (f *Form) Done() bool { return f.done }

// Close tears down the live control and unsubscribes from the bus.
func (f *Form) Close() {
	if f.closed {
		return
	}
	f.closed = true
	if f.current != nil {
		f.current.Dealloc()
		f.current = nil
	}
	for _, u := range f.unsub {
		u()
	}
	f.unsub = nil
}
