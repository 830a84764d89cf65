package keys

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestTerminalSelector_OpenSelector(t *testing.T) {
	store := NewStoreAt(t.TempDir())
	out := &bytes.Buffer{}
	sel := &TerminalSelector{
		Store: store,
		In:    strings.NewReader("entered-key\n"),
		Out:   out,
	}

	if err := sel.OpenSelector(context.Background()); err != nil {
		t.Fatalf("OpenSelector() error = %v", err)
	}

	got, err := store.Get()
	if err != nil || got != "entered-key" {
		t.Errorf("stored key = %q, %v", got, err)
	}
	if strings.Contains(out.String(), "entered-key") {
		t.Error("OpenSelector() must not echo the full key")
	}
}

func TestTerminalSelector_EmptyInput(t *testing.T) {
	sel := &TerminalSelector{
		Store: NewStoreAt(t.TempDir()),
		In:    strings.NewReader("\n"),
		Out:   &bytes.Buffer{},
	}

	if err := sel.OpenSelector(context.Background()); err == nil {
		t.Error("OpenSelector() with empty input expected error")
	}
}

func TestTerminalSelector_HasCredential(t *testing.T) {
	t.Setenv(EnvVar, "")
	store := NewStoreAt(t.TempDir())
	sel := &TerminalSelector{Store: store, In: strings.NewReader(""), Out: &bytes.Buffer{}}

	if ok, _ := sel.HasCredential(context.Background()); ok {
		t.Error("HasCredential() = true with no key anywhere")
	}

	if err := store.Set("some-key"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := sel.HasCredential(context.Background()); !ok {
		t.Error("HasCredential() = false with a stored key")
	}
}

func TestStaticSelector(t *testing.T) {
	t.Setenv(EnvVar, "")

	sel := &StaticSelector{Key: "k"}
	if ok, _ := sel.HasCredential(context.Background()); !ok {
		t.Error("HasCredential() = false with a static key")
	}

	empty := &StaticSelector{}
	if ok, _ := empty.HasCredential(context.Background()); ok {
		t.Error("HasCredential() = true with no key")
	}

	t.Setenv(EnvVar, "env-key")
	if ok, _ := empty.HasCredential(context.Background()); !ok {
		t.Error("HasCredential() = false with the env var set")
	}

	if err := sel.OpenSelector(context.Background()); !errors.Is(err, ErrNoSelector) {
		t.Errorf("OpenSelector() error = %v, want ErrNoSelector", err)
	}
}
