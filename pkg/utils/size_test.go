package utils

import "testing"

func TestHumanizeBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{10, "10 B"},
		{1024, "1.00 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024*1024*5 + 100, "5.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
	}
	for _, c := range cases {
		got := HumanizeBytes(c.in)
		if got != c.want {
			t.Fatalf("HumanizeBytes(%d) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestHumanizeFileSize(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 b"},
		{1, "1 b"},
		{500, "500 b"},
		{1023, "1023 b"},
		{1024, "1 kb"},
		{1536, "1.5 kb"},
		{1100, "1.07 kb"},
		{1024 * 1024, "1 mb"},
		{1024 * 1024 * 1024, "1 gb"},
		// no unit above gb
		{1024 * 1024 * 1024 * 1024, "1024 gb"},
		{-5, "-5 b"},
	}
	for _, c := range cases {
		got := HumanizeFileSize(c.in)
		if got != c.want {
			t.Fatalf("HumanizeFileSize(%d) = %q; want %q", c.in, got, c.want)
		}
	}
}
