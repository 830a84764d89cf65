package keys

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoSelector means no interactive way to acquire a key exists; the
// user has to supply one through configuration or the environment.
var ErrNoSelector = errors.New("no interactive key selector available")

// Selector is the credential-selection capability. Resolved once at
// startup: a terminal selector when stdin is a TTY, otherwise the
// static fallback.
type Selector interface {
	// HasCredential reports whether a usable key is currently present.
	HasCredential(ctx context.Context) (bool, error)

	// OpenSelector runs the key-selection flow; it returns nil only
	// when a key has been acquired.
	OpenSelector(ctx context.Context) error
}

// TerminalSelector prompts for a key on the terminal with echo
// disabled and persists it into the store.
type TerminalSelector struct {
	Store *Store
	In    io.Reader
	Out   io.Writer
}

func (t *TerminalSelector) HasCredential(_ context.Context) (bool, error) {
	if _, source, err := Resolve("", t.Store); err == nil {
		fmt.Fprintf(t.Out, "Using API key from %s\n", source)
		return true, nil
	}
	return false, nil
}

func (t *TerminalSelector) OpenSelector(_ context.Context) error {
	fmt.Fprint(t.Out, "Enter your Gemini API key: ")

	key, err := t.readKey()
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("no key entered")
	}

	if err := t.Store.Set(key); err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}
	fmt.Fprintf(t.Out, "Stored %s in %s\n", MaskKey(key), t.Store.Path())
	return nil
}

func (t *TerminalSelector) readKey() (string, error) {
	if f, ok := t.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		defer fmt.Fprintln(t.Out)
		key, err := term.ReadPassword(int(f.Fd()))
		return string(key), err
	}

	// Non-TTY input (tests, pipes): read one line with echo.
	var buf bytes.Buffer
	b := make([]byte, 1)
	for {
		n, err := t.In.Read(b)
		if n > 0 {
			if b[0] == '\n' {
				break
			}
			buf.WriteByte(b[0])
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}
	}
	return buf.String(), nil
}

// StaticSelector is the fallback when no interactive selection exists:
// it only ever reports the presence of a statically configured key.
type StaticSelector struct {
	Key string
}

func (s *StaticSelector) HasCredential(_ context.Context) (bool, error) {
	if s.Key != "" {
		return true, nil
	}
	return os.Getenv(EnvVar) != "", nil
}

func (s *StaticSelector) OpenSelector(_ context.Context) error {
	return ErrNoSelector
}

// DetectSelector picks the selector variant for this session.
func DetectSelector(store *Store, in io.Reader, out io.Writer, staticKey string) Selector {
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) && staticKey != "" {
		return &StaticSelector{Key: staticKey}
	}
	if store == nil {
		return &StaticSelector{Key: staticKey}
	}
	return &TerminalSelector{Store: store, In: in, Out: out}
}
