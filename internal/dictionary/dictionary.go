// Package dictionary resolves user-facing strings by key.
package dictionary

import "sync"

// Keys used by the controls.
const (
	FileSizeError     = "input-placeholder-file-size-error"
	FilePlaceholder   = "input-placeholder-file"
	TextPlaceholder   = "input-placeholder"
	ChoicePlaceholder = "input-placeholder-choice"
	InputNoFile       = "input-no-file"
)

var defaults = map[string]string{
	FileSizeError:     "File size too big...",
	FilePlaceholder:   "Select a file to upload",
	TextPlaceholder:   "Type your answer here ...",
	ChoicePlaceholder: "Choose an option",
	InputNoFile:       "No file selected",
}

// Dictionary maps keys to text, falling back to built-in defaults and
// finally to the key itself.
type Dictionary struct {
	mu     sync.RWMutex
	values map[string]string
}

// New returns a dictionary seeded with overrides.
func New(overrides map[string]string) *Dictionary {
	d := &Dictionary{values: make(map[string]string, len(overrides))}
	for k, v := range overrides {
		d.values[k] = v
	}
	return d
}

// Get returns the text for key.
func (d *Dictionary) Get(key string) string {
	if d != nil {
		d.mu.RLock()
		v, ok := d.values[key]
		d.mu.RUnlock()
		if ok {
			return v
		}
	}
	if v, ok := defaults[key]; ok {
		return v
	}
	return key
}

// Set overrides the text for key.
func (d *Dictionary) Set(key, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[key] = value
}
