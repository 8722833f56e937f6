package platform

import (
	"fmt"
	"io"
	"os"
)

// FS is the filesystem capability used by the mirror: existence checks,
// directory creation and atomic placement of downloaded files.
type FS interface {
	Exists(path string) bool
	MkdirAll(path string, mode os.FileMode) error
	Move(src, dst string, overwrite bool) error
}

// OSFS implements FS over the real filesystem.
type OSFS struct{}

// Exists reports whether path exists (file or directory).
func (OSFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MkdirAll creates path and any missing parents.
func (OSFS) MkdirAll(path string, mode os.FileMode) error {
	return os.MkdirAll(path, mode)
}

// Move renames src to dst, falling back to copy+remove when rename fails
// (temp directory may live on a different filesystem).
func (OSFS) Move(src, dst string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("destination '%s' already exists", dst)
		}
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// cross-device fallback
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("unable to open '%s': %w", src, err)
	}
	defer in.Close()

	tmp := dst + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("unable to create '%s': %w", tmp, err)
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("unable to copy '%s' to '%s': %w", src, tmp, err)
	}
	if err = out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("unable to finish '%s': %w", tmp, err)
	}
	if err = os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("unable to move '%s' to '%s': %w", tmp, dst, err)
	}
	os.Remove(src)
	return nil
}
