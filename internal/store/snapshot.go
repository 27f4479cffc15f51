package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// ErrImageExists is returned by Restore when the target file is present.
var ErrImageExists = errors.New("database image already exists")

// Snapshot writes a consistent, zstd-compressed copy of the database
// image to w. The copy is taken with VACUUM INTO, so it is a complete
// standalone database including the segment registry.
func (s *Store) Snapshot(ctx context.Context, w io.Writer) error {
	dir, err := os.MkdirTemp("", "ledgerkv-snapshot-")
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer os.RemoveAll(dir)

	image := filepath.Join(dir, "image.db")
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, image); err != nil {
		return fmt.Errorf("snapshot: vacuum: %w", err)
	}

	f, err := os.Open(image)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("snapshot: zstd: %w", err)
	}
	if _, err := io.Copy(enc, f); err != nil {
		enc.Close()
		return fmt.Errorf("snapshot: compress: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("snapshot: compress: %w", err)
	}
	return nil
}

// Restore decompresses a Snapshot stream into a new database file at
// path. It refuses to replace an existing file.
func Restore(r io.Reader, path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("restore %s: %w", path, ErrImageExists)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("restore %s: %w", path, err)
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("restore: zstd: %w", err)
	}
	defer dec.Close()

	tmp := path + ".restore"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if _, err := io.Copy(f, dec); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("restore: decompress: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("restore: sync: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("restore: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("restore: %w", err)
	}
	return nil
}
