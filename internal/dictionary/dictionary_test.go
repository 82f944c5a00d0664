package dictionary

import "testing"

func TestGet_FallsBack(t *testing.T) {
	d := New(map[string]string{FileSizeError: "Too large"})
	if got := d.Get(FileSizeError); got != "Too large" {
		t.Fatalf("override not used: %q", got)
	}
	if got := d.Get(InputNoFile); got != "No file selected" {
		t.Fatalf("default not used: %q", got)
	}
	if got := d.Get("unknown-key"); got != "unknown-key" {
		t.Fatalf("key fallback not used: %q", got)
	}

	var nilDict *Dictionary
	if got := nilDict.Get(FileSizeError); got != "File size too big..." {
		t.Fatalf("nil dictionary: %q", got)
	}

	d.Set(InputNoFile, "Nothing chosen")
	if got := d.Get(InputNoFile); got != "Nothing chosen" {
		t.Fatalf("set not applied: %q", got)
	}
}
