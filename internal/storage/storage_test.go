package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Tiliavir/monthly-invoicer/internal/storage"
)

func TestSaveAndList(t *testing.T) {
	base := t.TempDir()
	l := &storage.Local{Dir: base}

	f, err := l.Save(context.Background(), "2025", "20250531_60000_請求者.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := filepath.Join(base, "2025", "20250531_60000_請求者.pdf")
	if f.ID != want {
		t.Errorf("Save ID = %q, want %q", f.ID, want)
	}
	if !strings.HasPrefix(f.URL, "file://") {
		t.Errorf("Save URL = %q, want file:// URL", f.URL)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(data) != "%PDF" {
		t.Errorf("saved content = %q", data)
	}
	if _, err := os.Stat(want + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}

	files, err := l.List("2025")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 1 || files[0].Name != "20250531_60000_請求者.pdf" {
		t.Errorf("List = %+v", files)
	}
}

func TestSaveOverwrites(t *testing.T) {
	l := &storage.Local{Dir: t.TempDir()}
	ctx := context.Background()
	if _, err := l.Save(ctx, "", "a.pdf", []byte("one")); err != nil {
		t.Fatal(err)
	}
	f, err := l.Save(ctx, "", "a.pdf", []byte("two"))
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(f.ID)
	if string(data) != "two" {
		t.Errorf("content = %q, want %q", data, "two")
	}
}

func TestSaveStaysInsideDir(t *testing.T) {
	base := t.TempDir()
	l := &storage.Local{Dir: base}

	f, err := l.Save(context.Background(), "../../etc", "x/y.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(f.ID, base) {
		t.Errorf("Save wrote outside %s: %s", base, f.ID)
	}
	if filepath.Base(f.ID) != "x_y.pdf" {
		t.Errorf("Save name = %q, want x_y.pdf", filepath.Base(f.ID))
	}
}

func TestListMissingFolder(t *testing.T) {
	l := &storage.Local{Dir: t.TempDir()}
	files, err := l.List("none")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("List = %d files, want 0", len(files))
	}
}
