// Package display renders image payloads inline in terminals that
// speak the kitty graphics protocol.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spaceai/spaceai/internal/payload"
)

type Displayer struct {
	out io.Writer
}

func New(out io.Writer) *Displayer {
	return &Displayer{out: out}
}

// Show decodes the payload and writes it to the terminal.
func (d *Displayer) Show(p payload.Payload) error {
	_, data, err := p.Decode()
	if err != nil {
		return err
	}
	if err := writeKitty(d.out, data); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	fmt.Fprintln(d.out)
	return nil
}

// Supported reports whether the current terminal can render inline
// images.
func Supported() bool {
	termProgram := strings.ToLower(os.Getenv("TERM_PROGRAM"))
	for _, prog := range []string{"kitty", "ghostty", "iterm.app", "wezterm"} {
		if termProgram == prog {
			return true
		}
	}

	if os.Getenv("KITTY_WINDOW_ID") != "" || os.Getenv("ITERM_SESSION_ID") != "" {
		return true
	}

	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}
