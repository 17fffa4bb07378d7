package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomicReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "queue.json")

	if err := WriteFileAtomic(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte(`[{"author":"a"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `[{"author":"a"}]` {
		t.Fatalf("content mismatch: got %q", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

func TestWriteFileAtomicSetsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	if err := WriteFileAtomic(path, []byte("[]"), 0o600); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestReadFileIfExists(t *testing.T) {
	dir := t.TempDir()
	data, ok, err := ReadFileIfExists(filepath.Join(dir, "missing.json"))
	if err != nil || ok || data != nil {
		t.Fatalf("missing file: data=%q ok=%v err=%v", data, ok, err)
	}

	path := filepath.Join(dir, "present.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, ok, err = ReadFileIfExists(path)
	if err != nil || !ok || string(data) != "[]" {
		t.Fatalf("present file: data=%q ok=%v err=%v", data, ok, err)
	}
}
