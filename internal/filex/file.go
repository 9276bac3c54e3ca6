// Package filex holds small filesystem helpers shared by file-backed
// components. Everything goes through an afero.Fs so callers can swap the
// OS filesystem for an in-memory one.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// EnsureDir creates dir and any missing parents.
func EnsureDir(fsys afero.Fs, dir string) error {
	if err := fsys.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// EnsureFile creates an empty file at path with the given mtime unless one
// already exists.
func EnsureFile(fsys afero.Fs, path string, mtime time.Time) error {
	_, err := fsys.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := afero.WriteFile(fsys, path, nil, 0o640); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return Touch(fsys, path, mtime)
}

// WriteFileAtomic writes data to a sibling temp file, renames it over path
// and stamps mtime on the result. Readers see the old or the new content,
// never a mix.
func WriteFileAtomic(fsys afero.Fs, path string, data []byte, mtime time.Time) error {
	tmp, err := afero.TempFile(fsys, filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	name := tmp.Name()

	if _, err = tmp.Write(data); err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = fsys.Rename(name, path)
	}
	if err != nil {
		_ = fsys.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return Touch(fsys, path, mtime)
}

// AppendFile appends data to path and stamps mtime. A failed write is cut
// back to the previous size and mtime so no partial record is left behind.
func AppendFile(fsys afero.Fs, path string, data []byte, mtime time.Time) error {
	f, err := fsys.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o640)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat %s: %w", path, err)
	}
	size, prev := fi.Size(), fi.ModTime()

	if _, err = f.Write(data); err == nil {
		err = f.Sync()
	}
	if err != nil {
		if terr := f.Truncate(size); terr != nil {
			err = errors.Join(err, fmt.Errorf("truncate: %w", terr))
		}
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("append %s: %w", path, errors.Join(err, Touch(fsys, path, prev)))
	}
	return Touch(fsys, path, mtime)
}

// Touch sets both access and modification time of path.
func Touch(fsys afero.Fs, path string, mtime time.Time) error {
	if err := fsys.Chtimes(path, mtime, mtime); err != nil {
		return fmt.Errorf("chtimes %s: %w", path, err)
	}
	return nil
}
