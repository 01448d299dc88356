package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tilde prefix", "~/projects/app", filepath.Join(home, "projects/app")},
		{"absolute path untouched", "/tmp/app", "/tmp/app"},
		{"relative path untouched", "projects/app", "projects/app"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "report.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.NoError(t, ValidatePath(file))
	assert.Error(t, ValidatePath(dir))
	assert.Error(t, ValidatePath(filepath.Join(dir, "missing")))
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "report.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.NoError(t, ValidateDir(dir))
	assert.Error(t, ValidateDir(file))
	assert.Error(t, ValidateDir(filepath.Join(dir, "missing")))
}

func TestLooksBinary(t *testing.T) {
	assert.True(t, LooksBinary([]byte("abc\x00def")))
	assert.False(t, LooksBinary([]byte("public class User { }")))
	assert.False(t, LooksBinary([]byte("// comment with unicode: é ü ☃")))

	junk := strings.Repeat("\xff", 64)
	assert.True(t, LooksBinary([]byte(junk)))
}

func TestReadTextLines(t *testing.T) {
	dir := t.TempDir()

	t.Run("plain text with trailing newline", func(t *testing.T) {
		path := filepath.Join(dir, "a.cs")
		require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0o644))
		lines, ok := ReadTextLines(path)
		assert.True(t, ok)
		assert.Equal(t, []string{"one", "two"}, lines)
	})

	t.Run("windows line endings normalized", func(t *testing.T) {
		path := filepath.Join(dir, "b.cs")
		require.NoError(t, os.WriteFile(path, []byte("one\r\ntwo\r\n"), 0o644))
		lines, ok := ReadTextLines(path)
		assert.True(t, ok)
		assert.Equal(t, []string{"one", "two"}, lines)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "c.cs")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		lines, ok := ReadTextLines(path)
		assert.True(t, ok)
		assert.Empty(t, lines)
	})

	t.Run("binary file rejected", func(t *testing.T) {
		path := filepath.Join(dir, "d.cs")
		require.NoError(t, os.WriteFile(path, []byte("a\x00b"), 0o644))
		_, ok := ReadTextLines(path)
		assert.False(t, ok)
	})

	t.Run("missing file rejected", func(t *testing.T) {
		_, ok := ReadTextLines(filepath.Join(dir, "missing.cs"))
		assert.False(t, ok)
	})
}
