package errors

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateLogPath checks that path names an existing, readable search log.
func ValidateLogPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "search log path cannot be empty")
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".json" {
		return New(ErrCodeInvalidFormat, "search log must be a .json file, got %q", ext)
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Wrap(ErrCodeFileNotFound, err, "search log %s not found", path)
		}
		return Wrap(ErrCodeInvalidPath, err, "cannot access %s", path)
	}
	if info.IsDir() {
		return New(ErrCodeInvalidPath, "%s is a directory", path)
	}
	return nil
}

// OutputFormats lists the output formats the renderer understands.
var OutputFormats = []string{"dot", "svg", "pdf", "png", "json"}

// OutputFormat returns the format implied by the extension of path.
func OutputFormat(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range OutputFormats {
		if f == ext {
			return f, nil
		}
	}
	return "", New(ErrCodeInvalidFormat, "unsupported output format %q (want one of %s)", ext, strings.Join(OutputFormats, ", "))
}
