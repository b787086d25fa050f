package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ValidateInputFile checks that filename names a readable regular file of
// at most maxSize bytes. A non-positive maxSize disables the size check.
func ValidateInputFile(filename string, maxSize int64) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("file does not exist: %s", filename)
	case err != nil:
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	case info.IsDir():
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	case !info.Mode().IsRegular():
		return fmt.Errorf("not a regular file: %s", filename)
	case maxSize > 0 && info.Size() > maxSize:
		return fmt.Errorf("file %s is %s, larger than the %s limit",
			filename, FormatFileSize(info.Size()), FormatFileSize(maxSize))
	}

	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	return f.Close()
}

// ValidateOutputFile makes sure the parent directory of an output file
// exists. The empty name means stdout and is always valid.
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	return nil
}

// GetFileExtension returns the file extension in lowercase
func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

var documentExtensions = []string{".txt", ".text", ".md", ".markdown", ".html", ".htm", ".docx"}

// IsSupportedDocument reports whether the extension is one the resume
// extractor reads without sniffing.
func IsSupportedDocument(filename string) bool {
	return slices.Contains(documentExtensions, GetFileExtension(filename))
}

// FormatFileSize renders a byte count with binary units, e.g. "1.5 KB".
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	value, prefix := float64(size)/unit, 0
	for value >= unit && prefix < len("KMGTPE")-1 {
		value /= unit
		prefix++
	}
	return fmt.Sprintf("%.1f %cB", value, "KMGTPE"[prefix])
}
