package arduino

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// LineReader splits the byte stream from the board into lines. The
// underlying reader is expected to give up after a short timeout, reporting
// either io.EOF or os.ErrDeadlineExceeded; partial lines are kept until the
// rest arrives.
type LineReader struct {
	r       io.Reader
	pending []byte
	chunk   []byte
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: r, chunk: make([]byte, 256)}
}

// Next returns the next complete, trimmed, non-empty line. ok is false when
// no full line is available yet. A line that is not valid UTF-8 is consumed
// and reported as ErrDecode.
func (l *LineReader) Next() (line string, ok bool, err error) {
	for {
		if line, found := l.popLine(); found {
			if !utf8.ValidString(line) {
				return "", false, ErrDecode
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			return line, true, nil
		}

		n, err := l.r.Read(l.chunk)
		if n > 0 {
			l.pending = append(l.pending, l.chunk[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrDeadlineExceeded) {
				if n > 0 {
					continue
				}
				return "", false, nil
			}
			return "", false, fmt.Errorf("serial read: %w", err)
		}
		if n == 0 {
			return "", false, nil
		}
	}
}

// Buffered returns the bytes of an incomplete line.
func (l *LineReader) Buffered() int {
	return len(l.pending)
}

func (l *LineReader) popLine() (string, bool) {
	i := bytes.IndexByte(l.pending, '\n')
	if i < 0 {
		return "", false
	}
	line := string(l.pending[:i])
	l.pending = l.pending[i+1:]
	return line, true
}
