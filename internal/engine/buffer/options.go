package buffer

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithLineEnding sets the line ending written by Save.
// LoadFile overrides it with the ending detected in the file.
func WithLineEnding(le LineEnding) Option {
	return func(b *Buffer) {
		b.lineEnding = le
	}
}

// WithPath sets the file path used by Save when called without a path.
func WithPath(path string) Option {
	return func(b *Buffer) {
		b.path = path
	}
}

// WithEncoding sets the encoding written by Save.
func WithEncoding(enc Encoding) Option {
	return func(b *Buffer) {
		b.encoding = enc
	}
}

// DetectLineEnding returns a LineEnding based on the most common line ending in the text.
// Returns LineEndingLF if no line endings are found.
func DetectLineEnding(text string) LineEnding {
	var lfCount, crlfCount, crCount int

	i := 0
	for i < len(text) {
		if i+1 < len(text) && text[i] == '\r' && text[i+1] == '\n' {
			crlfCount++
			i += 2
		} else if text[i] == '\r' {
			crCount++
			i++
		} else if text[i] == '\n' {
			lfCount++
			i++
		} else {
			i++
		}
	}

	if crlfCount > 0 && crlfCount >= lfCount && crlfCount >= crCount {
		return LineEndingCRLF
	}
	if crCount > 0 && crCount >= lfCount && crCount >= crlfCount {
		return LineEndingCR
	}
	return LineEndingLF
}

// ParseLineEnding converts a configuration value ("lf", "crlf", "cr") to a
// LineEnding. The second result is false for unknown values, including "auto".
func ParseLineEnding(s string) (LineEnding, bool) {
	switch s {
	case "lf", "LF", "\n":
		return LineEndingLF, true
	case "crlf", "CRLF", "\r\n":
		return LineEndingCRLF, true
	case "cr", "CR", "\r":
		return LineEndingCR, true
	default:
		return LineEndingLF, false
	}
}
