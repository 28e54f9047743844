// Package storage files finished invoices in a local directory.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Tiliavir/monthly-invoicer/internal/config"
	"github.com/Tiliavir/monthly-invoicer/internal/model"
)

// DefaultDir returns ~/.invoicer/invoices.
func DefaultDir() (string, error) {
	base, err := config.BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "invoices"), nil
}

// Local writes files below Dir. The folder passed to Save is a subdirectory.
type Local struct {
	Dir string
}

// NewLocal returns a Local rooted at dir (DefaultDir when empty).
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return &Local{Dir: dir}, nil
}

func (l *Local) path(folder, name string) string {
	return filepath.Join(l.Dir, cleanFolder(folder), cleanName(name))
}

// Save atomically writes data to <Dir>/<folder>/<name>, replacing any
// previous file of that name.
func (l *Local) Save(_ context.Context, folder, name string, data []byte) (model.File, error) {
	path := l.path(folder, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return model.File{}, fmt.Errorf("storage error creating directories: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return model.File{}, fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return model.File{}, fmt.Errorf("storage error renaming temp file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return model.File{
		ID:   abs,
		Name: filepath.Base(path),
		URL:  (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(),
	}, nil
}

// List returns the files of folder sorted by name.
func (l *Local) List(folder string) ([]model.File, error) {
	dir := filepath.Join(l.Dir, cleanFolder(folder))
	des, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []model.File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", dir, err)
	}
	files := make([]model.File, 0, len(des))
	for _, de := range des {
		if de.IsDir() || strings.HasSuffix(de.Name(), ".tmp") {
			continue
		}
		p := filepath.Join(dir, de.Name())
		files = append(files, model.File{
			ID:   p,
			Name: de.Name(),
			URL:  (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// cleanFolder keeps folder inside the root.
func cleanFolder(folder string) string {
	f := filepath.Clean("/" + filepath.FromSlash(folder))
	return strings.TrimPrefix(f, string(filepath.Separator))
}

// cleanName replaces path separators so a payee name cannot escape the folder.
func cleanName(name string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(name)
}
