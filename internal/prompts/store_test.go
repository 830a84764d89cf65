package prompts

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStoreWithPath(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewStoreWithPath() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoad_Empty(t *testing.T) {
	s := testStore(t)

	prompts, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(prompts) != 0 {
		t.Errorf("Load() = %v, want empty", prompts)
	}
}

func TestSaveLoad_PreservesOrder(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	want := []string{"newest", "middle", "oldest"}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Load() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Load()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSave_ReplacesPrevious(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, []string{"old a", "old b"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, []string{"new"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "new" {
		t.Errorf("Load() = %v, want [new]", got)
	}
}

func TestSave_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := NewStoreWithPath(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, []string{"persisted"}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := NewStoreWithPath(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	got, err := s2.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "persisted" {
		t.Errorf("Load() after reopen = %v", got)
	}
}

func TestDefaultDataDir_Override(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SPACEAI_DATA_DIR", dir)

	got, err := DefaultDataDir()
	if err != nil {
		t.Fatalf("DefaultDataDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("DefaultDataDir() = %q, want %q", got, dir)
	}
}

func TestNewStoreWithPath_CreatesParentDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "deep", "history.db")

	s, err := NewStoreWithPath(dbPath)
	if err != nil {
		t.Fatalf("NewStoreWithPath() error = %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Errorf("parent directory missing: %v", err)
	}
}
