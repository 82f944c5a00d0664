package control

import (
	"sync"

	"cf-upload/internal/eventloop"
	"cf-upload/internal/reader"
)

// ChangeEvent is the picker's change notification.
type ChangeEvent struct {
	Files []reader.File
}

// PickerInput is the file picker element a file control is bound to. The
// front end owns it: it calls Select when the user picks (or cancels) and
// decides what Click does.
type PickerInput struct {
	loop eventloop.Poster

	mu        sync.Mutex
	nextID    int
	listeners []pickerListener

	// OnClick opens the picker UI.
	OnClick func()
}

type pickerListener struct {
	id int
	fn func(ChangeEvent)
}

// NewPickerInput creates a picker whose change notifications are delivered on loop.
func NewPickerInput(loop eventloop.Poster) *PickerInput {
	return &PickerInput{loop: loop}
}

// AddChangeListener registers fn and returns a func that removes it.
func (p *PickerInput) AddChangeListener(fn func(ChangeEvent)) (remove func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.listeners = append(p.listeners, pickerListener{id: id, fn: fn})
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		kept := p.listeners[:0]
		for _, l := range p.listeners {
			if l.id != id {
				kept = append(kept, l)
			}
		}
		p.listeners = kept
	}
}

// ListenerCount returns the number of registered change listeners.
func (p *PickerInput) ListenerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

// Select queues a change notification carrying files. An empty call models a
// cancelled picker.
func (p *PickerInput) Select(files ...reader.File) {
	ev := ChangeEvent{Files: files}
	p.loop.Post(func() { p.dispatch(ev) })
}

func (p *PickerInput) dispatch(ev ChangeEvent) {
	p.mu.Lock()
	fns := make([]func(ChangeEvent), 0, len(p.listeners))
	for _, l := range p.listeners {
		fns = append(fns, l.fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Click opens the picker UI, if the front end provided one.
func (p *PickerInput) Click() {
	if p.OnClick != nil {
		p.OnClick()
	}
}
