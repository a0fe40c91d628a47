package buffer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding identifies how a document is stored on disk.
type Encoding uint8

const (
	EncodingUTF8    Encoding = iota // UTF-8 without BOM
	EncodingUTF8BOM                 // UTF-8 with BOM
	EncodingUTF16LE                 // UTF-16 little endian with BOM
	EncodingUTF16BE                 // UTF-16 big endian with BOM
)

// String returns the name of the encoding.
func (e Encoding) String() string {
	switch e {
	case EncodingUTF8BOM:
		return "utf-8-bom"
	case EncodingUTF16LE:
		return "utf-16le"
	case EncodingUTF16BE:
		return "utf-16be"
	default:
		return "utf-8"
	}
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// IOError reports a failed load or save. It is the only buffer error meant
// to reach the user.
type IOError struct {
	Op   string // "read", "decode", "encode" or "write"
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// LoadFile replaces the buffer content with the content of path.
// The file is read and decoded completely before anything is replaced, so a
// failure leaves the buffer as it was.
func (b *Buffer) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &IOError{Op: "read", Path: path, Err: err}
	}

	text, enc, err := decode(data)
	if err != nil {
		return &IOError{Op: "decode", Path: path, Err: err}
	}

	b.lines = splitLines(NormalizeLineEndings(text))
	b.lineEnding = DetectLineEnding(text)
	b.encoding = enc
	b.path = path
	b.modified = false
	b.revision++
	return nil
}

// Save writes the buffer to path, or to the buffer's own path when path is
// empty. Lines are joined with the buffer's line ending and encoded with its
// encoding. The data goes to a temporary file that is renamed over the
// target.
func (b *Buffer) Save(path string) error {
	if path == "" {
		path = b.path
	}
	if path == "" {
		return ErrNoPath
	}

	data, err := encode(strings.Join(b.lines, b.lineEnding.Sequence()), b.encoding)
	if err != nil {
		return &IOError{Op: "encode", Path: path, Err: err}
	}

	if err := writeFileAtomic(path, data); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}

	b.path = path
	b.modified = false
	return nil
}

// detectEncoding inspects the byte order mark, if any.
func detectEncoding(data []byte) Encoding {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return EncodingUTF8BOM
	case bytes.HasPrefix(data, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		return EncodingUTF16BE
	default:
		return EncodingUTF8
	}
}

// decode converts file bytes to a UTF-8 string with the BOM removed.
// Invalid UTF-8 sequences become U+FFFD.
func decode(data []byte) (string, Encoding, error) {
	enc := detectEncoding(data)
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", enc, err
	}
	return string(out), enc, nil
}

// encode converts UTF-8 text to the on-disk representation of enc.
func encode(text string, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingUTF8BOM:
		out := make([]byte, 0, len(bomUTF8)+len(text))
		out = append(out, bomUTF8...)
		return append(out, text...), nil
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	default:
		return []byte(text), nil
	}
}

// writeFileAtomic writes data next to path and renames it into place,
// keeping the permissions of an existing file.
func writeFileAtomic(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
