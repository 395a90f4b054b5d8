package build

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

// DirError reports that the output folder could not be created. The run
// carries on; every write into the folder then fails on its own.
type DirError struct {
	Dir string
	Err error
}

func (e *DirError) Error() string {
	return fmt.Sprintf("creating output folder %s: %v", e.Dir, e.Err)
}

func (e *DirError) Unwrap() error {
	return e.Err
}

// WriteError reports that the image for one hour could not be encoded or
// saved. Other hours are unaffected.
type WriteError struct {
	Hour int
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("saving image for hour %d to %s: %v", e.Hour, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// EnsureDir creates dir and its parents if needed. It reports whether the
// directory was created by this call.
func EnsureDir(fsys afero.Fs, dir string) (bool, error) {
	if ok, err := afero.DirExists(fsys, dir); err == nil && ok {
		return false, nil
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return false, &DirError{Dir: dir, Err: err}
	}
	return true, nil
}

// Exists reports whether a file is present at path. Its contents are not
// inspected.
func Exists(fsys afero.Fs, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// WriteFile writes data to path. The parent directory must already exist.
func WriteFile(fsys afero.Fs, path string, data []byte) error {
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	return nil
}

// DirSize calculates the total size in bytes of all files in dir, recursively.
// If dir does not exist, it returns 0.
func DirSize(fsys afero.Fs, dir string) (int64, error) {
	var total int64
	err := afero.Walk(fsys, dir, func(_ string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if err != nil && os.IsNotExist(err) {
		return 0, nil
	}
	return total, err
}
