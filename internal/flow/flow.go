// Package flow carries control signals to the rest of the form.
//
// A signal can be published on two independently subscribable channels: the
// flow channel, scoped to the form that owns the emitting control, and the
// document channel, a global broadcast. A single Publish fans out to both in
// that order.
package flow

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType names a signal.
type EventType string

const (
	// UserInputInvalid is published when a control rejects input. Detail is a DTO.
	UserInputInvalid EventType = "cf-flow-user-input-invalid"
	// ProgressChange is published when a control starts or finishes work. Detail is a ProgressState.
	ProgressChange EventType = "cf-basic-control-element-progress"
)

// ProgressState is the detail of a ProgressChange event.
type ProgressState string

const (
	Busy  ProgressState = "cf-control-element-progress-BUSY"
	Ready ProgressState = "cf-control-element-progress-READY"
)

// DTO is the payload of flow signals.
type DTO struct {
	ErrorText string `json:"errorText,omitempty" yaml:"errorText,omitempty"`
}

// Channel selects where an event is delivered.
type Channel uint8

const (
	ChannelFlow Channel = 1 << iota
	ChannelDocument

	ChannelAll = ChannelFlow | ChannelDocument
)

// Event is one published signal.
type Event struct {
	ID     string
	Type   EventType
	Source string // id of the emitting control
	Detail any
	Time   time.Time
}

// Listener receives events synchronously on the publishing goroutine.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Bus fans events out to flow and document listeners.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	flow   map[EventType][]subscription
	doc    map[EventType][]subscription
	docAll []subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		flow: make(map[EventType][]subscription),
		doc:  make(map[EventType][]subscription),
	}
}

// NewEvent stamps an event with an id and the current time.
func NewEvent(typ EventType, source string, detail any) Event {
	return Event{
		ID:     uuid.New().String(),
		Type:   typ,
		Source: source,
		Detail: detail,
		Time:   time.Now(),
	}
}

// Subscribe registers fn for typ on one channel. ChannelAll registers on both.
// The returned func removes every registration made by this call.
func (b *Bus) Subscribe(ch Channel, typ EventType, fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	if ch&ChannelFlow != 0 {
		b.flow[typ] = append(b.flow[typ], subscription{id: id, fn: fn})
	}
	if ch&ChannelDocument != 0 {
		b.doc[typ] = append(b.doc[typ], subscription{id: id, fn: fn})
	}
	return func() { b.remove(id) }
}

// SubscribeDocument registers fn for every document event.
func (b *Bus) SubscribeDocument(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.docAll = append(b.docAll, subscription{id: id, fn: fn})
	return func() { b.remove(id) }
}

func (b *Bus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	drop := func(subs []subscription) []subscription {
		kept := subs[:0]
		for _, s := range subs {
			if s.id != id {
				kept = append(kept, s)
			}
		}
		return kept
	}
	for typ, subs := range b.flow {
		b.flow[typ] = drop(subs)
	}
	for typ, subs := range b.doc {
		b.doc[typ] = drop(subs)
	}
	b.docAll = drop(b.docAll)
}

// Publish delivers ev to the selected channels, flow listeners first.
// Listeners are snapshotted before delivery so they may subscribe or
// unsubscribe while handling an event.
func (b *Bus) Publish(ev Event, ch Channel) {
	b.mu.RLock()
	var targets []Listener
	if ch&ChannelFlow != 0 {
		for _, s := range b.flow[ev.Type] {
			targets = append(targets, s.fn)
		}
	}
	if ch&ChannelDocument != 0 {
		for _, s := range b.doc[ev.Type] {
			targets = append(targets, s.fn)
		}
		for _, s := range b.docAll {
			targets = append(targets, s.fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range targets {
		fn(ev)
	}
}
