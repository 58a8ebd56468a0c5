package datastore

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/types"
	toml "github.com/pelletier/go-toml/v2"
)

// validID rejects ids that cannot be used as a file name.
func validID(kind, id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return errors.Newf(errors.ErrInvalidInput, "invalid %s id %q", kind, id)
	}
	return nil
}

// readTOML decodes path into v. It reports false when the file is missing.
func readTOML(fsys types.FS, path string, v interface{}) (bool, error) {
	data, err := fsys.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrPersistence, "failed to read %s", path)
	}
	if err := toml.Unmarshal(data, v); err != nil {
		return false, errors.Wrapf(err, errors.ErrPersistence, "failed to parse %s", path)
	}
	return true, nil
}

// writeTOML encodes v and replaces path through a temporary file.
func writeTOML(fsys types.FS, path string, v interface{}) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, errors.ErrPersistence, "failed to encode %s", path)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrPersistence, "failed to create %s", filepath.Dir(path))
	}
	tmp := path + ".tmp"
	if err := fsys.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrPersistence, "failed to write %s", tmp)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, errors.ErrPersistence, "failed to replace %s", path)
	}
	return nil
}

// removeFile removes path; a missing file is not an error.
func removeFile(fsys types.FS, path string) error {
	err := fsys.Remove(path)
	if err == nil || stderrors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return errors.Wrapf(err, errors.ErrPersistence, "failed to remove %s", path)
}
