package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fs := OSFileSystem{}

	if !fs.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}

	if fs.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOSFileSystem_ReadFile(t *testing.T) {
	fs := OSFileSystem{}

	data, err := fs.ReadFile("filesystem.go")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if len(data) == 0 {
		t.Error("expected non-empty file content")
	}
}

func TestOSFileSystem_Glob(t *testing.T) {
	fs := OSFileSystem{}
	dir := t.TempDir()

	for _, name := range []string{"b.4mse", "a.4mse", "c.txt"} {
		if err := fs.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	matches, err := fs.Glob(filepath.Join(dir, "*.4mse"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if filepath.Base(matches[0]) != "a.4mse" || filepath.Base(matches[1]) != "b.4mse" {
		t.Errorf("expected sorted matches, got %v", matches)
	}
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	testData := []byte("hello, world")
	err := mfs.WriteFile("/test.txt", testData, 0644)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := mfs.ReadFile("/test.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if string(data) != string(testData) {
		t.Errorf("expected %q, got %q", testData, data)
	}
}

func TestMemoryFileSystem_ReadMissing(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if _, err := mfs.ReadFile("/missing.txt"); err == nil {
		t.Error("expected error reading missing file")
	}
	if mfs.Exists("/missing.txt") {
		t.Error("expected Exists to be false for missing file")
	}
}

func TestMemoryFileSystem_Glob(t *testing.T) {
	mfs := NewMemoryFileSystem()

	files := []string{
		"/data/seq/id11_2024-09-27.4mse",
		"/data/seq/id10_2024-09-27.4mse",
		"/data/seq/notes.txt",
		"/data/other/id12_2024-09-27.4mse",
	}
	for _, name := range files {
		if err := mfs.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	matches, err := mfs.Glob("/data/seq/*.4mse")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}

	want := []string{
		"/data/seq/id10_2024-09-27.4mse",
		"/data/seq/id11_2024-09-27.4mse",
	}
	if len(matches) != len(want) {
		t.Fatalf("expected %d matches, got %d: %v", len(want), len(matches), matches)
	}
	for i := range want {
		if matches[i] != want[i] {
			t.Errorf("match %d: expected %q, got %q", i, want[i], matches[i])
		}
	}
}

func TestMemoryFileSystem_Stat(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.WriteFile("/a/b.bin", []byte{1, 2, 3}, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	info, err := mfs.Stat("/a/b.bin")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 3 {
		t.Errorf("expected size 3, got %d", info.Size())
	}
	if info.Name() != "b.bin" {
		t.Errorf("expected name b.bin, got %q", info.Name())
	}
	if info.Mode() != os.FileMode(0600) {
		t.Errorf("expected mode 0600, got %v", info.Mode())
	}
}
