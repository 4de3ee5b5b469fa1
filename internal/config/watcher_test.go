package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileWatcherNotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	rc := filepath.Join(dir, "daybookrc")
	other := filepath.Join(dir, "unrelated")
	if err := os.WriteFile(rc, []byte("set max_cell_events 6\n"), 0644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan string, 4)
	fw, err := NewFileWatcher(func(path string) { changed <- path })
	if err != nil {
		t.Fatalf("NewFileWatcher: %v", err)
	}
	defer fw.Close()

	if err := fw.AddFile(rc); err != nil {
		t.Fatalf("AddFile: %v", err)
	}

	if err := os.WriteFile(other, []byte("noise"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(rc, []byte("set max_cell_events 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case path := <-changed:
		want, _ := filepath.Abs(rc)
		if path != want {
			t.Errorf("onChange(%s), want %s", path, want)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification for watched file")
	}
}

func TestFileWatcherRemoveFile(t *testing.T) {
	dir := t.TempDir()
	rc := filepath.Join(dir, "daybookrc")
	if err := os.WriteFile(rc, nil, 0644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan string, 4)
	fw, err := NewFileWatcher(func(path string) { changed <- path })
	if err != nil {
		t.Fatalf("NewFileWatcher: %v", err)
	}
	defer fw.Close()

	if err := fw.AddFile(rc); err != nil {
		t.Fatal(err)
	}
	if err := fw.RemoveFile(rc); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}

	if err := os.WriteFile(rc, []byte("set max_cell_events 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case path := <-changed:
		t.Errorf("unexpected notification for %s after RemoveFile", path)
	case <-time.After(300 * time.Millisecond):
	}
}
