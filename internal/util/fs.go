package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// StoredPDFPath resolves a stored file name inside dir. Names that carry a
// directory, are hidden or are not PDFs are rejected.
func StoredPDFPath(dir, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") ||
		!strings.EqualFold(filepath.Ext(name), ".pdf") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return filepath.Join(dir, name), nil
}
