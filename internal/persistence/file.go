package persistence

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/stemsi/classbook-backend/internal/model"
)

// FileStore keeps the workbook in a JSON file. Writes go to a temp file in
// the same directory and are renamed over the target.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Name() string { return "file" }

func (f *FileStore) Load(_ context.Context) (*model.AppState, bool, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, failure("read "+f.path, err)
	}
	st, err := decode(b)
	if err != nil {
		return nil, false, err
	}
	return st, true, nil
}

func (f *FileStore) Save(ctx context.Context, st *model.AppState) error {
	if err := ctx.Err(); err != nil {
		return failure("save", err)
	}
	b, err := encode(st)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return failure("mkdir "+dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return failure("create temp", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return failure("write temp", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return failure("sync temp", err)
	}
	if err := tmp.Close(); err != nil {
		return failure("close temp", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return failure("rename", err)
	}
	return nil
}
