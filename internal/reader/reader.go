// Package reader reads a selected file asynchronously and reports progress
// through callbacks delivered on an event loop.
//
// Callback order for one read is: load-start, zero or more progress, then
// at most one of load, error or abort. Once Abort is called no further
// progress or load callback is delivered.
package reader

import (
	"context"
	"errors"
	"io"
	"sync"

	"cf-upload/internal/eventloop"
)

// ChunkSize is the number of bytes read between progress callbacks.
const ChunkSize = 64 * 1024

// ErrReadInProgress is returned when ReadAsBinary is called twice on one Reader.
var ErrReadInProgress = errors.New("reader: read already started")

// Progress reports how much of the file has been read.
type Progress struct {
	Loaded int64
	Total  int64
}

// Percent returns Loaded/Total as a percentage. An empty file is complete.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 100
	}
	return float64(p.Loaded) / float64(p.Total) * 100
}

// Result describes a finished read. File contents are not retained.
type Result struct {
	Name      string
	Size      int64
	BytesRead int64
}

// Callbacks are invoked on the loop the Reader was created with. Nil
// callbacks are skipped.
type Callbacks struct {
	OnError     func(err error)
	OnProgress  func(p Progress)
	OnAbort     func()
	OnLoadStart func()
	OnLoad      func(r Result)
}

// FileReader is the capability a control needs to read a file.
type FileReader interface {
	ReadAsBinary(f File) error
	Abort()
}

// Factory creates a FileReader delivering to cb.
type Factory func(cb Callbacks) FileReader

// NewFactory returns a Factory creating Readers on loop.
func NewFactory(loop eventloop.Poster) Factory {
	return func(cb Callbacks) FileReader { return New(loop, cb) }
}

// Reader is a single-use asynchronous file reader.
type Reader struct {
	loop eventloop.Poster
	cb   Callbacks

	mu      sync.Mutex
	started bool
	aborted bool
	cancel  context.CancelFunc
}

// New creates a Reader that posts its callbacks to loop.
func New(loop eventloop.Poster, cb Callbacks) *Reader {
	return &Reader{loop: loop, cb: cb}
}

// ReadAsBinary starts reading f in the background.
func (r *Reader) ReadAsBinary(f File) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrReadInProgress
	}
	r.started = true
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.mu.Unlock()

	go r.run(ctx, f)
	return nil
}

// Abort stops the read. It is safe to call from inside a callback and more
// than once; only the first call has an effect.
func (r *Reader) Abort() {
	r.mu.Lock()
	if r.aborted || !r.started {
		r.aborted = true
		r.mu.Unlock()
		return
	}
	r.aborted = true
	cancel := r.cancel
	r.mu.Unlock()
	cancel()
}

func (r *Reader) isAborted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aborted
}

// deliver posts fn unless the read was aborted by the time the loop runs it.
func (r *Reader) deliver(fn func()) {
	r.loop.Post(func() {
		if r.isAborted() {
			return
		}
		fn()
	})
}

func (r *Reader) run(ctx context.Context, f File) {
	defer r.cancel()

	// Wait for the load-start callback to be handled so that an Abort issued
	// from it is visible before any byte is read.
	handled := make(chan struct{})
	r.loop.Post(func() {
		defer close(handled)
		if r.isAborted() {
			return
		}
		if r.cb.OnLoadStart != nil {
			r.cb.OnLoadStart()
		}
	})
	select {
	case <-handled:
	case <-ctx.Done():
	}
	if ctx.Err() != nil {
		r.finishAborted()
		return
	}

	total := f.Size()
	rc, err := f.Open()
	if err != nil {
		r.finishError(err)
		return
	}
	defer rc.Close()

	buf := make([]byte, ChunkSize)
	var loaded int64
	for {
		if ctx.Err() != nil {
			r.finishAborted()
			return
		}
		n, err := rc.Read(buf)
		if n > 0 {
			loaded += int64(n)
			p := Progress{Loaded: loaded, Total: total}
			if r.cb.OnProgress != nil {
				r.deliver(func() { r.cb.OnProgress(p) })
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			r.finishError(err)
			return
		}
	}
	if ctx.Err() != nil {
		r.finishAborted()
		return
	}
	res := Result{Name: f.Name(), Size: total, BytesRead: loaded}
	if r.cb.OnLoad != nil {
		r.deliver(func() { r.cb.OnLoad(res) })
	}
}

func (r *Reader) finishError(err error) {
	if r.cb.OnError != nil {
		r.deliver(func() { r.cb.OnError(err) })
	}
}

// finishAborted bypasses deliver: the abort callback is the one that must
// still arrive after Abort.
func (r *Reader) finishAborted() {
	if r.cb.OnAbort != nil {
		r.loop.Post(r.cb.OnAbort)
	}
}
