// Package fsutil moves installed repository directories into place.
package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rshade/gitupdater/internal/logging"
)

// Move renames src to dst. When the rename fails, for example across
// devices or onto a non-empty directory, the tree is moved entry by entry:
// files are copied and removed, directories are merged recursively, and src
// is removed once it is empty. An entry of src that is dst itself is skipped.
func Move(ctx context.Context, src, dst string) error {
	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("moving %s: %w", src, err)
	}

	log := logging.FromContext(ctx)
	log.Debug().
		Str("component", "fsutil").
		Str("operation", "move").
		Err(renameErr).
		Str("src", src).
		Str("dst", dst).
		Msg("rename failed, falling back to copy")

	if !info.IsDir() {
		if err = copyFile(src, dst); err != nil {
			return err
		}
		if err = os.Remove(src); err != nil {
			return fmt.Errorf("removing source: %w", err)
		}
		return nil
	}

	return moveTree(src, dst)
}

func moveTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if err = os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	cleanDst := filepath.Clean(dst)
	var errs []error
	for _, e := range entries {
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())
		if filepath.Clean(from) == cleanDst {
			continue
		}

		if e.IsDir() {
			errs = append(errs, moveTree(from, to))
			continue
		}
		if err = copyFile(from, to); err != nil {
			errs = append(errs, err)
			continue
		}
		if err = os.Remove(from); err != nil {
			errs = append(errs, fmt.Errorf("removing source: %w", err))
		}
	}

	if empty, _ := isEmptyDir(src); empty {
		if err = os.Remove(src); err != nil {
			errs = append(errs, fmt.Errorf("removing source: %w", err))
		}
	}
	return errors.Join(errs...)
}

func isEmptyDir(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

// copyFile copies a file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	if _, copyErr := io.Copy(dstFile, srcFile); copyErr != nil {
		_ = dstFile.Close()
		return fmt.Errorf("copying file: %w", copyErr)
	}

	if syncErr := dstFile.Sync(); syncErr != nil {
		_ = dstFile.Close()
		return fmt.Errorf("syncing destination: %w", syncErr)
	}

	if closeErr := dstFile.Close(); closeErr != nil {
		return fmt.Errorf("closing destination: %w", closeErr)
	}

	return nil
}
