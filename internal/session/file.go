package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/twiced-technology-gmbh/taskrank/internal/filelock"
)

const fileMode = 0o600

// File is a Store backed by a JSON file, shared between CLI invocations.
// Writes go through a temp file and rename under an advisory lock.
type File struct {
	path string
}

// NewFile returns a store persisting to path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the snapshot file location.
func (f *File) Path() string {
	return f.path
}

// Load reads the snapshot, or returns ErrNoAnalysis if none was saved.
func (f *File) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoAnalysis
		}
		return nil, fmt.Errorf("reading last analysis: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing last analysis %s: %w", f.path, err)
	}
	return &snap, nil
}

// Save replaces the stored snapshot.
func (f *File) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling last analysis: %w", err)
	}
	data = append(data, '\n')

	return filelock.Guard(f.path, func() error {
		tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
		if err != nil {
			return fmt.Errorf("creating temp file: %w", err)
		}
		tmpName := tmp.Name()
		if _, err := tmp.Write(data); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
			return fmt.Errorf("writing last analysis: %w", err)
		}
		if err := tmp.Close(); err != nil {
			_ = os.Remove(tmpName)
			return fmt.Errorf("writing last analysis: %w", err)
		}
		if err := os.Chmod(tmpName, fileMode); err != nil {
			_ = os.Remove(tmpName)
			return err
		}
		return os.Rename(tmpName, f.path)
	})
}
