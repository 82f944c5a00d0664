package eventloop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_RunsCallbacksInOrder(t *testing.T) {
	l := New(8)
	var got []int
	done := make(chan struct{})
	for i := 0; i < 3; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	l.Post(func() { close(done); l.Close() })

	require.NoError(t, l.Run(context.Background()))
	<-done
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestLoop_PostAfterCloseIsDropped(t *testing.T) {
	l := New(1)
	l.Close()
	l.Post(func() { t.Fatal("callback ran after close") })
	_, ok := l.Next()
	assert.False(t, ok)
}

func TestLoop_PostDoesNotBlockWithoutConsumer(t *testing.T) {
	l := New(2)
	defer l.Close()
	posted := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			l.Post(func() {})
		}
		close(posted)
	}()
	select {
	case <-posted:
	case <-time.After(2 * time.Second):
		t.Fatal("Post blocked on a full queue")
	}
	assert.Equal(t, 10000, l.Pending())
}

func TestLoop_CallbackMayPostBeyondInitialSize(t *testing.T) {
	l := New(1)
	var got []int
	l.Post(func() {
		for i := 0; i < 100; i++ {
			i := i
			l.Post(func() { got = append(got, i) })
		}
		l.Post(l.Close)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, l.Run(ctx))
	require.Len(t, got, 100)
	assert.Equal(t, 99, got[99])
}

func TestLoop_AfterFuncPostsToLoop(t *testing.T) {
	l := New(4)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	fired := make(chan struct{})
	l.AfterFunc(10*time.Millisecond, func() {
		close(fired)
		l.Close()
	})
	require.NoError(t, l.Run(ctx))
	select {
	case <-fired:
	default:
		t.Fatal("timer callback did not run on the loop")
	}
}

func TestManual_TimersFireOnAdvance(t *testing.T) {
	m := NewManual()
	var got []string
	m.AfterFunc(2*time.Second, func() { got = append(got, "late") })
	m.AfterFunc(time.Second, func() { got = append(got, "early") })
	stopped := m.AfterFunc(time.Second, func() { got = append(got, "stopped") })
	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())
	assert.Equal(t, 2, m.Pending())

	m.Advance(999 * time.Millisecond)
	assert.Empty(t, got)

	m.Advance(time.Second)
	assert.Equal(t, []string{"early", "late"}, got)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_DrainRunsNestedPosts(t *testing.T) {
	m := NewManual()
	var got []int
	m.Post(func() {
		got = append(got, 1)
		m.Post(func() { got = append(got, 2) })
	})
	assert.Equal(t, 2, m.Drain())
	assert.Equal(t, []int{1, 2}, got)
}
