package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_FlowBeforeDocument(t *testing.T) {
	b := NewBus()
	var order []string
	b.Subscribe(ChannelDocument, UserInputInvalid, func(Event) { order = append(order, "document") })
	b.Subscribe(ChannelFlow, UserInputInvalid, func(Event) { order = append(order, "flow") })

	b.Publish(NewEvent(UserInputInvalid, "c1", DTO{ErrorText: "too big"}), ChannelAll)
	assert.Equal(t, []string{"flow", "document"}, order)
}

func TestBus_ChannelsAreIndependent(t *testing.T) {
	b := NewBus()
	var flowN, docN, allN int
	b.Subscribe(ChannelFlow, ProgressChange, func(Event) { flowN++ })
	b.Subscribe(ChannelDocument, ProgressChange, func(Event) { docN++ })
	b.SubscribeDocument(func(Event) { allN++ })

	b.Publish(NewEvent(ProgressChange, "c1", Busy), ChannelDocument)
	assert.Equal(t, 0, flowN)
	assert.Equal(t, 1, docN)
	assert.Equal(t, 1, allN)

	b.Publish(NewEvent(ProgressChange, "c1", Ready), ChannelFlow)
	assert.Equal(t, 1, flowN)
	assert.Equal(t, 1, docN)
	assert.Equal(t, 1, allN)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()
	n := 0
	unsub := b.Subscribe(ChannelAll, ProgressChange, func(Event) { n++ })
	b.Publish(NewEvent(ProgressChange, "c1", Busy), ChannelAll)
	assert.Equal(t, 2, n)

	unsub()
	b.Publish(NewEvent(ProgressChange, "c1", Busy), ChannelAll)
	assert.Equal(t, 2, n)
}

func TestBus_ListenerMayUnsubscribeItself(t *testing.T) {
	b := NewBus()
	n := 0
	var unsub func()
	unsub = b.Subscribe(ChannelDocument, ProgressChange, func(Event) {
		n++
		unsub()
	})
	b.Publish(NewEvent(ProgressChange, "c1", Busy), ChannelDocument)
	b.Publish(NewEvent(ProgressChange, "c1", Busy), ChannelDocument)
	assert.Equal(t, 1, n)
}

func TestNewEvent_StampsIdentity(t *testing.T) {
	a := NewEvent(ProgressChange, "c1", Busy)
	b := NewEvent(ProgressChange, "c1", Busy)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Time.IsZero())
	assert.Equal(t, Busy, a.Detail)
}
