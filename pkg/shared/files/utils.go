package files

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ExpandPath resolves paths that include a tilde (~) to the user's home directory.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, path[2:]), nil
	}
	return path, nil
}

// ValidatePath checks if the given path is a valid file path for reading.
func ValidatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path stat error: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path %q is a directory, not a file", path)
	}
	if info.Mode()&os.ModeType != 0 {
		return fmt.Errorf("path %q is not a regular file", path)
	}
	return nil
}

// ValidateDir checks if the given path is a readable directory.
func ValidateDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path stat error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path %q is not a directory", path)
	}
	return nil
}

// LooksBinary is a crude binary sniff: a NUL byte or mostly invalid UTF-8 in
// the first kilobyte marks the content as non-text.
func LooksBinary(data []byte) bool {
	probe := data
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	if bytes.IndexByte(probe, 0) >= 0 {
		return true
	}
	invalid := 0
	for len(probe) > 0 {
		r, size := utf8.DecodeRune(probe)
		if r == utf8.RuneError && size == 1 {
			invalid++
		}
		probe = probe[size:]
	}
	return invalid > 32
}

// ReadTextLines reads a file as text lines. Unreadable or binary content
// yields (nil, false) rather than an error: such files are simply skipped.
func ReadTextLines(path string) ([]string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	if LooksBinary(data) {
		return nil, false
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{}, true
	}
	return strings.Split(text, "\n"), true
}
