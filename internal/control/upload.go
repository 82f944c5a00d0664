package control

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"cf-upload/internal/dictionary"
	"cf-upload/internal/dom"
	"cf-upload/internal/eventloop"
	"cf-upload/internal/flow"
	"cf-upload/internal/reader"
	"cf-upload/pkg/utils"
)

// DefaultMaxFileSize applies when the tag sets no limit.
const DefaultMaxFileSize int64 = 100000000000

// DefaultSettleDelay is the pause between a finished read and submission.
const DefaultSettleDelay = 2000 * time.Millisecond

// Attribute names carrying the size limit. The first one present wins.
const (
	AttrMaxSize       = "cf-max-size"
	AttrMaxSizeLegacy = "max-size"
)

// Template tag names of the upload control.
const (
	TagUploadText        = "cf-upload-file-text"
	TagUploadProgress    = "cf-upload-file-progress"
	TagUploadProgressBar = "cf-upload-file-progress-bar"

	// ClassLoaded is added to the progress bar once the read completes.
	ClassLoaded = "loaded"
)

const uploadTemplate = `<cf-upload-file-ui>
	<cf-upload-file-text></cf-upload-file-text>
	<cf-upload-file-progress>
		<cf-upload-file-progress-bar></cf-upload-file-progress-bar>
	</cf-upload-file-progress>
</cf-upload-file-ui>`

var (
	// ErrFileReaderUnavailable is returned when no file-reading capability is
	// configured. The upload control cannot work without it.
	ErrFileReaderUnavailable = errors.New("control: no file reader available")
	// ErrNoPicker is returned when the upload control has no picker to bind to.
	ErrNoPicker = errors.New("control: file picker required")
)

// ValidationError is a selection rejected by the size gate.
type ValidationError struct {
	Name    string
	Size    int64
	Max     int64
	Missing bool
}

func (e *ValidationError) Error() string {
	if e.Missing {
		return "no file selected"
	}
	return fmt.Sprintf("file %q too large: %d bytes exceeds %d", e.Name, e.Size, e.Max)
}

// UploadState is the read/submit state of an upload control.
type UploadState int

const (
	StateIdle UploadState = iota
	StateReading
	StateLoaded
	StateSubmitting
	StateInert
)

func (s UploadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReading:
		return "reading"
	case StateLoaded:
		return "loaded"
	case StateSubmitting:
		return "submitting"
	case StateInert:
		return "inert"
	default:
		return "unknown"
	}
}

// UploadFile lets the user pick a local file, checks it against a size limit,
// reads it for progress feedback and hands it to the host after a settle delay.
type UploadFile struct {
	*Base

	maxFileSize int64
	settleDelay time.Duration
	loop        eventloop.Scheduler
	newReader   reader.Factory
	picker      *PickerInput

	text        *dom.Element
	progressBar *dom.Element

	removeChange func()

	state       UploadState
	loading     bool
	fileName    string
	file        reader.File
	progress    reader.Progress
	reader      reader.FileReader
	submitTimer eventloop.Timer
	// generation invalidates callbacks of superseded reads and timers.
	generation int
}

// ParseMaxFileSize reads the size limit from the tag attributes.
func ParseMaxFileSize(t Tag) (int64, bool, error) {
	s, ok := t.AttrValue(AttrMaxSize, AttrMaxSizeLegacy)
	if !ok {
		return DefaultMaxFileSize, false, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return DefaultMaxFileSize, false, fmt.Errorf("parse %s %q: %w", AttrMaxSize, s, err)
	}
	return v, true, nil
}

// NewUploadFile builds an upload control bound to opts.Picker. It fails with
// ErrFileReaderUnavailable when opts.NewReader is nil.
func NewUploadFile(opts Options) (*UploadFile, error) {
	if opts.NewReader == nil {
		return nil, ErrFileReaderUnavailable
	}
	if opts.Picker == nil {
		return nil, ErrNoPicker
	}
	if opts.Loop == nil {
		return nil, ErrNoLoop
	}
	u := &UploadFile{
		loop:        opts.Loop,
		newReader:   opts.NewReader,
		picker:      opts.Picker,
		settleDelay: opts.SettleDelay,
	}
	if u.settleDelay <= 0 {
		u.settleDelay = DefaultSettleDelay
	}
	base, err := newBase(opts, "UploadFileUI", uploadTemplate, u)
	if err != nil {
		return nil, err
	}
	u.Base = base

	limit, _, err := ParseMaxFileSize(opts.Tag)
	if err != nil {
		u.log.Warn().Err(err).Msg("ignoring invalid max size")
	}
	u.maxFileSize = limit

	u.text = u.el.First(TagUploadText)
	u.progressBar = u.el.First(TagUploadProgressBar)
	u.removeChange = u.picker.AddChangeListener(u.onChange)
	return u, nil
}

// Value is the accepted file's name.
func (u *UploadFile) Value() string { return u.fileName }

// File is the accepted file, or nil.
func (u *UploadFile) File() reader.File { return u.file }

// MaxFileSize is the size limit in bytes.
func (u *UploadFile) MaxFileSize() int64 { return u.maxFileSize }

// Loading reports whether a file has been accepted and its read has not finished.
func (u *UploadFile) Loading() bool { return u.loading }

// State returns the read/submit state.
func (u *UploadFile) State() UploadState { return u.state }

// Progress returns the last progress reported by the reader.
func (u *UploadFile) Progress() reader.Progress { return u.progress }

// AnimateIn is honoured only while a file is loading, so late requests after
// a rejection or teardown do nothing.
func (u *UploadFile) AnimateIn() {
	if u.loading {
		u.Base.AnimateIn()
	}
}

// TriggerFileSelect opens the picker.
func (u *UploadFile) TriggerFileSelect() {
	if u.deallocated {
		return
	}
	u.picker.Click()
}

// Dealloc stops any pending submission, aborts the read and detaches from the
// picker. No signal is emitted afterwards.
func (u *UploadFile) Dealloc() {
	if u.deallocated {
		return
	}
	u.cancelInFlight()
	if u.removeChange != nil {
		u.removeChange()
		u.removeChange = nil
	}
	u.state = StateInert
	u.Base.Dealloc()
}

func (u *UploadFile) checkSize(f reader.File) *ValidationError {
	if f == nil {
		return &ValidationError{Missing: true, Max: u.maxFileSize}
	}
	if f.Size() > u.maxFileSize {
		return &ValidationError{Name: f.Name(), Size: f.Size(), Max: u.maxFileSize}
	}
	return nil
}

func (u *UploadFile) onChange(ev ChangeEvent) {
	if u.deallocated {
		return
	}
	var f reader.File
	if len(ev.Files) > 0 {
		f = ev.Files[0]
	}
	if verr := u.checkSize(f); verr != nil {
		if u.state == StateReading || u.state == StateLoaded {
			u.cancelInFlight()
		}
		u.log.Info().Err(verr).Msg("selection rejected")
		u.publish(flow.UserInputInvalid, flow.DTO{ErrorText: u.dict.Get(dictionary.FileSizeError)}, flow.ChannelAll)
		return
	}

	// A new selection replaces whatever was still in flight.
	u.cancelInFlight()

	u.fileName = f.Name()
	u.file = f
	u.loading = true
	u.state = StateReading
	u.progress = reader.Progress{Total: f.Size()}
	u.progressBar.RemoveClass(ClassLoaded)
	u.progressBar.SetStyle("width", "0%")
	u.AnimateIn()
	u.text.SetText(fmt.Sprintf("%s (%s)", f.Name(), utils.HumanizeFileSize(f.Size())))
	u.publish(flow.ProgressChange, flow.Busy, flow.ChannelDocument)

	gen := u.generation
	u.reader = u.newReader(reader.Callbacks{
		OnLoadStart: func() {
			if u.current(gen) {
				u.log.Debug().Str("file", f.Name()).Msg("read started")
			}
		},
		OnProgress: func(p reader.Progress) {
			if u.current(gen) {
				u.onProgress(p)
			}
		},
		OnError: func(err error) {
			if u.current(gen) {
				u.log.Warn().Err(err).Str("file", f.Name()).Msg("read failed")
			}
		},
		OnAbort: func() {
			// Aborts we issued ourselves have already bumped the generation.
			if u.current(gen) {
				u.log.Warn().Str("file", f.Name()).Msg("read aborted")
				return
			}
			u.log.Debug().Str("file", f.Name()).Msg("superseded read aborted")
		},
		OnLoad: func(r reader.Result) {
			if u.current(gen) {
				u.onLoad(r)
			}
		},
	})
	if err := u.reader.ReadAsBinary(f); err != nil {
		u.log.Warn().Err(err).Str("file", f.Name()).Msg("read not started")
	}
}

func (u *UploadFile) current(gen int) bool {
	return !u.deallocated && gen == u.generation
}

func (u *UploadFile) onProgress(p reader.Progress) {
	u.progress = p
	u.progressBar.SetStyle("width", strconv.FormatFloat(p.Percent(), 'f', -1, 64)+"%")
}

func (u *UploadFile) onLoad(r reader.Result) {
	u.log.Debug().Str("file", r.Name).Int64("bytes", r.BytesRead).Msg("read finished")
	u.loading = false
	u.state = StateLoaded
	u.progressBar.AddClass(ClassLoaded)

	if u.submitTimer != nil {
		u.submitTimer.Stop()
	}
	gen := u.generation
	u.submitTimer = u.loop.AfterFunc(u.settleDelay, func() {
		if u.current(gen) {
			u.submit()
		}
	})
}

func (u *UploadFile) submit() {
	u.submitTimer = nil
	u.state = StateSubmitting
	u.publish(flow.ProgressChange, flow.Ready, flow.ChannelDocument)
	u.el.RemoveClass(ClassAnimateIn)
	u.choose()
}

// cancelInFlight aborts the current read and pending submission and
// invalidates their callbacks.
func (u *UploadFile) cancelInFlight() {
	u.generation++
	if u.submitTimer != nil {
		u.submitTimer.Stop()
		u.submitTimer = nil
	}
	if u.reader != nil {
		u.reader.Abort()
		u.reader = nil
	}
	if u.state == StateReading || u.state == StateLoaded {
		u.state = StateIdle
	}
	u.loading = false
}
