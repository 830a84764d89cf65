// Package repl implements the interactive mission console.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/spaceai/spaceai/internal/display"
	"github.com/spaceai/spaceai/internal/keys"
	"github.com/spaceai/spaceai/internal/payload"
	"github.com/spaceai/spaceai/internal/progress"
	"github.com/spaceai/spaceai/internal/provider"
	"github.com/spaceai/spaceai/internal/session"
	"github.com/spaceai/spaceai/internal/state"
)

type REPL struct {
	in        io.Reader
	out       io.Writer
	err       io.Writer
	manager   *session.Manager
	selector  keys.Selector
	connect   func(ctx context.Context) error
	displayer *display.Displayer
	commands  map[string]Command
	order     []Command
	running   bool

	alert  *color.Color
	accent *color.Color
}

type Config struct {
	In       io.Reader
	Out      io.Writer
	Err      io.Writer
	Manager  *session.Manager
	Selector keys.Selector

	// Connect resolves the current key into a fresh provider and marks
	// the credential confirmed. Called after every key selection.
	Connect func(ctx context.Context) error

	// Displayer is nil when the terminal cannot render inline images.
	Displayer *display.Displayer
}

func New(cfg *Config) *REPL {
	r := &REPL{
		in:        cfg.In,
		out:       cfg.Out,
		err:       cfg.Err,
		manager:   cfg.Manager,
		selector:  cfg.Selector,
		connect:   cfg.Connect,
		displayer: cfg.Displayer,
		commands:  make(map[string]Command),
		alert:     color.New(color.FgRed),
		accent:    color.New(color.FgCyan),
	}
	r.registerCommands()
	return r
}

func (r *REPL) Run(ctx context.Context) error {
	r.running = true
	r.printWelcome()

	scanner := bufio.NewScanner(r.in)
	for r.running {
		r.printPrompt()
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := r.execute(ctx, line); err != nil {
			if errors.Is(err, provider.ErrCredentialExpired) {
				r.alert.Fprintln(r.err, state.CredentialExpiredMessage)
				continue
			}
			r.alert.Fprintf(r.err, "Error: %v\n", err)
		}
	}

	return scanner.Err()
}

func (r *REPL) execute(ctx context.Context, line string) error {
	parts := parseCommand(line)
	if len(parts) == 0 {
		return nil
	}

	cmdName := strings.ToLower(parts[0])
	args := parts[1:]

	cmd, ok := r.commands[cmdName]
	if !ok {
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmdName)
	}

	return cmd.Execute(ctx, r, args)
}

func (r *REPL) Stop() {
	r.running = false
}

// ensureCredential runs the key selector when no credential is
// confirmed yet. Generation commands call this before touching the
// provider.
func (r *REPL) ensureCredential(ctx context.Context) error {
	if r.manager.Snapshot().HasCredential {
		return nil
	}
	if err := r.selector.OpenSelector(ctx); err != nil {
		if errors.Is(err, keys.ErrNoSelector) {
			return fmt.Errorf("no API key available: set %s or run 'key'", keys.EnvVar)
		}
		return err
	}
	return r.connect(ctx)
}

// runOp executes op in the background while ticking a simulated
// progress line every half second.
func (r *REPL) runOp(op func() error, upscaling bool) error {
	done := make(chan error, 1)
	go func() { done <- op() }()

	start := time.Now()
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			fmt.Fprint(r.out, "\r\033[K")
			return err
		case <-ticker.C:
			elapsed := time.Since(start)
			fmt.Fprintf(r.out, "\r\033[K%3.0f%% %s",
				progress.Percent(elapsed, upscaling),
				progress.Message(elapsed, upscaling))
		}
	}
}

// showInline renders the payload when the terminal supports it; render
// failures are warnings, never command failures.
func (r *REPL) showInline(p payload.Payload) {
	if r.displayer == nil {
		return
	}
	if err := r.displayer.Show(p); err != nil {
		fmt.Fprintf(r.err, "Warning: failed to display: %v\n", err)
	}
}

func (r *REPL) printWelcome() {
	r.accent.Fprintln(r.out, "SPACE AI mission console")
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'quit' to exit.")
	fmt.Fprintln(r.out)
}

func (r *REPL) printPrompt() {
	st := r.manager.Snapshot()
	if st.Editing {
		fmt.Fprintf(r.out, "spaceai [%s %s] %s> ", st.Resolution, st.AspectRatio, r.accent.Sprint("(edit)"))
	} else {
		fmt.Fprintf(r.out, "spaceai [%s %s]> ", st.Resolution, st.AspectRatio)
	}
}

func parseCommand(line string) []string {
	var parts []string
	var current strings.Builder
	inQuotes := false
	quoteChar := rune(0)

	for _, ch := range line {
		switch {
		case ch == '"' || ch == '\'':
			if inQuotes && ch == quoteChar {
				inQuotes = false
				quoteChar = 0
			} else if !inQuotes {
				inQuotes = true
				quoteChar = ch
			} else {
				current.WriteRune(ch)
			}
		case ch == ' ' && !inQuotes:
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(ch)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
