package buffer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoadFileRoundTrip(t *testing.T) {
	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("hi\r\nthere"))
	require.NoError(t, err)
	utf16be, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("naïve\n"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		data     []byte
		text     string
		ending   LineEnding
		encoding Encoding
	}{
		{"lf", []byte("one\ntwo\n"), "one\ntwo\n", LineEndingLF, EncodingUTF8},
		{"crlf", []byte("one\r\ntwo\r\n"), "one\ntwo\n", LineEndingCRLF, EncodingUTF8},
		{"cr", []byte("one\rtwo"), "one\ntwo", LineEndingCR, EncodingUTF8},
		{"utf8 bom", []byte("\xEF\xBB\xBFhi\n"), "hi\n", LineEndingLF, EncodingUTF8BOM},
		{"utf16le", utf16le, "hi\nthere", LineEndingCRLF, EncodingUTF16LE},
		{"utf16be", utf16be, "naïve\n", LineEndingLF, EncodingUTF16BE},
		{"empty", []byte{}, "", LineEndingLF, EncodingUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "in.txt", tt.data)

			buf := NewBuffer()
			require.NoError(t, buf.LoadFile(path))

			assert.Equal(t, tt.text, buf.Text())
			assert.Equal(t, tt.ending, buf.LineEnding())
			assert.Equal(t, tt.encoding, buf.Encoding())
			assert.Equal(t, tt.encoding != EncodingUTF8, buf.HasBOM())
			assert.Equal(t, path, buf.Path())
			assert.False(t, buf.IsModified())

			out := filepath.Join(t.TempDir(), "out.txt")
			require.NoError(t, buf.Save(out))

			got, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Equal(t, tt.data, got)
		})
	}
}

func TestLoadFileInvalidUTF8(t *testing.T) {
	path := writeTemp(t, "bad.txt", []byte{'a', 0xff, 'b'})

	buf := NewBuffer()
	require.NoError(t, buf.LoadFile(path))

	assert.Equal(t, "a�b", buf.LineText(0))
	assert.Equal(t, 3, buf.LineLen(0))
}

func TestLoadFileFailureKeepsState(t *testing.T) {
	buf := NewBufferFromString("keep me", WithPath("original.txt"))
	id := buf.ID()
	rev := buf.Revision()

	err := buf.LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "read", ioErr.Op)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	assert.Equal(t, "keep me", buf.Text())
	assert.Equal(t, "original.txt", buf.Path())
	assert.Equal(t, id, buf.ID())
	assert.Equal(t, rev, buf.Revision())
}

func TestSave(t *testing.T) {
	t.Run("no path", func(t *testing.T) {
		buf := NewBufferFromString("x")
		assert.ErrorIs(t, buf.Save(""), ErrNoPath)
	})

	t.Run("uses own path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.txt")
		buf := NewBufferFromString("a", WithPath(path), WithLineEnding(LineEndingCRLF))
		_, err := buf.Insert(Pos(0, 1), "\nb")
		require.NoError(t, err)
		require.True(t, buf.IsModified())

		require.NoError(t, buf.Save(""))
		assert.False(t, buf.IsModified())

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "a\r\nb", string(got))
	})

	t.Run("keeps permissions", func(t *testing.T) {
		path := writeTemp(t, "perm.txt", []byte("old"))
		require.NoError(t, os.Chmod(path, 0o640))

		buf := NewBuffer()
		require.NoError(t, buf.LoadFile(path))
		buf.LoadText("new")
		require.NoError(t, buf.Save(""))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temporary file left behind")
	})

	t.Run("missing directory", func(t *testing.T) {
		buf := NewBufferFromString("x")
		err := buf.Save(filepath.Join(t.TempDir(), "nope", "doc.txt"))

		var ioErr *IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, "write", ioErr.Op)
		assert.Empty(t, buf.Path())
	})
}

func TestDetectLineEnding(t *testing.T) {
	tests := []struct {
		text string
		want LineEnding
	}{
		{"", LineEndingLF},
		{"a\nb", LineEndingLF},
		{"a\r\nb\r\n", LineEndingCRLF},
		{"a\rb", LineEndingCR},
		{"a\r\nb\nc\r\n", LineEndingCRLF},
		{"a\nb\nc\r\n", LineEndingLF},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLineEnding(tt.text), "%q", tt.text)
	}
}

func TestParseLineEnding(t *testing.T) {
	le, ok := ParseLineEnding("crlf")
	assert.True(t, ok)
	assert.Equal(t, LineEndingCRLF, le)

	_, ok = ParseLineEnding("auto")
	assert.False(t, ok)
}
