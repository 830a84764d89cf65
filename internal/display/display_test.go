package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spaceai/spaceai/internal/payload"
)

func TestShow_WritesKittyEscapes(t *testing.T) {
	out := &bytes.Buffer{}
	d := New(out)

	p := payload.Encode([]byte("image bytes"), "image/png")
	if err := d.Show(p); err != nil {
		t.Fatalf("Show() error = %v", err)
	}

	got := out.String()
	if !strings.HasPrefix(got, kittyStart) {
		t.Errorf("Show() output should start with the kitty escape, got %q", got[:8])
	}
	if !strings.Contains(got, "a=T,f=100") {
		t.Error("Show() output missing the transmit-and-display params")
	}
}

func TestShow_InvalidPayload(t *testing.T) {
	d := New(&bytes.Buffer{})
	if err := d.Show(payload.Payload("not a data uri")); err == nil {
		t.Error("Show() expected error for a malformed payload")
	}
}

func TestWriteKitty_Chunking(t *testing.T) {
	// Enough data that the base64 form spans three chunks.
	data := bytes.Repeat([]byte("x"), chunkSize*2)

	out := &bytes.Buffer{}
	if err := writeKitty(out, data); err != nil {
		t.Fatalf("writeKitty() error = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "m=1") {
		t.Error("chunked output should mark continuations with m=1")
	}
	if !strings.Contains(got, "m=0") {
		t.Error("chunked output should close with m=0")
	}
	if n := strings.Count(got, kittyStart); n < 2 {
		t.Errorf("chunked output has %d escapes, want at least 2", n)
	}
	if strings.Count(got, "a=T") != 1 {
		t.Error("only the first chunk should carry the action params")
	}
}

func TestWriteKitty_Empty(t *testing.T) {
	out := &bytes.Buffer{}
	if err := writeKitty(out, nil); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Error("writeKitty() should write nothing for empty data")
	}
}

func TestSupported(t *testing.T) {
	t.Setenv("TERM_PROGRAM", "")
	t.Setenv("KITTY_WINDOW_ID", "")
	t.Setenv("ITERM_SESSION_ID", "")
	t.Setenv("TERM", "dumb")

	if Supported() {
		t.Error("Supported() = true for a dumb terminal")
	}

	t.Setenv("TERM", "xterm-kitty")
	if !Supported() {
		t.Error("Supported() = false for xterm-kitty")
	}

	t.Setenv("TERM", "dumb")
	t.Setenv("KITTY_WINDOW_ID", "1")
	if !Supported() {
		t.Error("Supported() = false with KITTY_WINDOW_ID set")
	}
}
