// Package fileutil writes command output files.
package fileutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileExists reports whether a regular file exists at filePath.
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	return err == nil && info.Mode().IsRegular()
}

// WriteFileWithOverwrite replaces filePath with data, creating parent
// directories. An existing file is left alone unless overwrite is set, in
// which case false is returned. Readers never observe a partial file: data
// goes to a temporary sibling that is renamed into place.
func WriteFileWithOverwrite(filePath string, data []byte, perm os.FileMode, overwrite bool) (bool, error) {
	if !overwrite && FileExists(filePath) {
		return false, nil
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*")
	if err != nil {
		return false, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return false, err
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return false, err
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return false, err
	}
	return true, nil
}

// WriteJSONFile writes data as two-space indented JSON. The bool reports
// whether the file was written.
func WriteJSONFile(data any, filePath string, overwrite bool) (bool, error) {
	if !overwrite && FileExists(filePath) {
		slog.Debug("JSON file already exists, skipping", "filename", filePath)
		return false, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	// datasheet URLs carry query strings
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return false, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	written, err := WriteFileWithOverwrite(filePath, buf.Bytes(), 0o644, true)
	if err != nil {
		return false, fmt.Errorf("failed to write JSON file: %w", err)
	}
	slog.Debug("Wrote JSON file", "filename", filePath, "bytes", buf.Len())
	return written, nil
}
