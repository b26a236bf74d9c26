package util

import (
	"path/filepath"
	"strings"
)

// SanitizeFilename reduces an uploaded name to a safe base name: no path
// components, no control characters, spaces collapsed to underscores.
func SanitizeFilename(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))

	r := make([]rune, 0, len(name))
	for _, ch := range name {
		switch {
		case ch < 0x20 || ch == 0x7f:
			continue
		case ch == ' ':
			r = append(r, '_')
		case strings.ContainsRune(`<>:"|?*`, ch):
			continue
		default:
			r = append(r, ch)
		}
	}
	out := strings.Trim(string(r), "._")
	if out == "" || out == "." || out == ".." {
		return "", ErrInvalidFilename
	}
	if !strings.EqualFold(filepath.Ext(out), ".pdf") {
		return "", ErrInvalidFilename
	}
	return out, nil
}
