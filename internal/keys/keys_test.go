package keys

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreSetGetDelete(t *testing.T) {
	s := NewStoreAt(t.TempDir())

	if key, err := s.Get(); err != nil || key != "" {
		t.Errorf("Get() on empty store = %q, %v; want empty, nil", key, err)
	}
	if exists, _ := s.Exists(); exists {
		t.Error("Exists() = true on empty store")
	}

	if err := s.Set("test-key-123"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := s.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "test-key-123" {
		t.Errorf("Get() = %q, want test-key-123", got)
	}

	exists, err := s.Exists()
	if err != nil || !exists {
		t.Errorf("Exists() = %v, %v; want true", exists, err)
	}

	if err := s.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if key, _ := s.Get(); key != "" {
		t.Errorf("Get() after Delete() = %q, want empty", key)
	}
	if err := s.Delete(); err == nil {
		t.Error("Delete() with nothing stored expected error")
	}
}

func TestStoreFilePermissions(t *testing.T) {
	dir := t.TempDir()
	s := NewStoreAt(dir)
	if err := s.Set("secret"); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(filepath.Join(dir, "keys.json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("keys file permissions = %o, want 0600", perm)
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"short", "*****"},
		{"12345678", "********"},
		{"AIzaSyABCDEF123456", "AIza**********3456"},
	}

	for _, tt := range tests {
		if got := MaskKey(tt.key); got != tt.want {
			t.Errorf("MaskKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestResolve_Priority(t *testing.T) {
	s := NewStoreAt(t.TempDir())
	if err := s.Set("stored-key"); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvVar, "env-key")

	key, source, err := Resolve("flag-key", s)
	if err != nil || key != "flag-key" {
		t.Errorf("Resolve() = %q (%s), want the explicit flag key", key, source)
	}

	key, _, err = Resolve("", s)
	if err != nil || key != "stored-key" {
		t.Errorf("Resolve() = %q, want the stored key", key)
	}

	if err := s.Delete(); err != nil {
		t.Fatal(err)
	}
	key, source, err = Resolve("", s)
	if err != nil || key != "env-key" {
		t.Errorf("Resolve() = %q (%s), want the environment key", key, source)
	}
	if !strings.Contains(source, EnvVar) {
		t.Errorf("Resolve() source = %q, should name %s", source, EnvVar)
	}
}

func TestResolve_NoKey(t *testing.T) {
	t.Setenv(EnvVar, "")

	if _, _, err := Resolve("", NewStoreAt(t.TempDir())); err == nil {
		t.Error("Resolve() with no key anywhere expected error")
	}
	if _, _, err := Resolve("", nil); err == nil {
		t.Error("Resolve() with nil store expected error")
	}
}
