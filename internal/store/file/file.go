// Package file is the flat-file store backend. Each user owns a directory
// holding one tab-separated file per collection:
//
//	<dir>/<user>/skull
//	<dir>/<user>/quick
//	<dir>/<user>/occurrence
//
// Every line is one entry, id first. A file's modification time is the
// collection's last-modified token.
package file

import (
	"bufio"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
	"github.com/dmitrijs2005/skullkeeper/internal/filex"
	"github.com/dmitrijs2005/skullkeeper/internal/models"
	"github.com/dmitrijs2005/skullkeeper/internal/store"
	"github.com/spf13/afero"
)

type table[D any] struct {
	fs     afero.Fs
	path   string
	codec  codec[D]
	lastID models.ID
}

func openTable[D any](fsys afero.Fs, path string, c codec[D]) (*table[D], error) {
	if err := filex.EnsureFile(fsys, path, store.Truncate(store.Now())); err != nil {
		return nil, err
	}
	t := &table[D]{fs: fsys, path: path, codec: c}

	entries, err := t.Load()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		t.lastID = max(t.lastID, e.ID)
	}
	return t, nil
}

func (t *table[D]) Load() ([]models.WithID[D], error) {
	f, err := t.fs.Open(t.path)
	if err != nil {
		return nil, common.Internal("open "+t.path, err)
	}
	defer f.Close()

	var entries []models.WithID[D]
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			continue
		}
		e, err := t.codec.unmarshal(line)
		if err != nil {
			return nil, common.Internal(fmt.Sprintf("parse %s line %d", t.path, n), err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, common.Internal("read "+t.path, err)
	}
	return entries, nil
}

func (t *table[D]) Append(e models.WithID[D], modified time.Time) error {
	return common.Internal("append entry", filex.AppendFile(t.fs, t.path, []byte(t.codec.marshal(e)), modified))
}

func (t *table[D]) Replace(entries []models.WithID[D], modified time.Time) error {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(t.codec.marshal(e))
	}
	return common.Internal("rewrite entries", filex.WriteFileAtomic(t.fs, t.path, []byte(b.String()), modified))
}

func (t *table[D]) LastModified() (time.Time, error) {
	fi, err := t.fs.Stat(t.path)
	if err != nil {
		return time.Time{}, common.Internal("stat "+t.path, err)
	}
	return store.Truncate(fi.ModTime()), nil
}

func (t *table[D]) NextID() (models.ID, error) {
	if t.lastID == math.MaxUint32 {
		return 0, common.ErrStoreFull
	}
	t.lastID++
	return t.lastID, nil
}

func tablePath(dir, user, collection string) string {
	return filepath.Join(dir, user, collection)
}
