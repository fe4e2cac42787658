package arduino

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedReader returns one chunk per Read, then times out.
type scriptedReader struct {
	chunks []string
	err    error
}

func (s *scriptedReader) Read(p []byte) (int, error) {
	if len(s.chunks) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		return 0, os.ErrDeadlineExceeded
	}
	n := copy(p, s.chunks[0])
	s.chunks = s.chunks[1:]
	return n, nil
}

func TestLineReaderSingleLine(t *testing.T) {
	lr := NewLineReader(&scriptedReader{chunks: []string{"45\r\n"}})

	line, ok, err := lr.Next()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "45", line)

	_, ok, err = lr.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLineReaderPartialLineAcrossReads(t *testing.T) {
	lr := NewLineReader(&scriptedReader{chunks: []string{"Mois", "ture:4", "5\n"}})

	line, ok, err := lr.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Moisture:45", line)
}

func TestLineReaderKeepsPartialOnTimeout(t *testing.T) {
	src := &scriptedReader{chunks: []string{"4"}}
	lr := NewLineReader(src)

	_, ok, err := lr.Next()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, lr.Buffered())

	src.chunks = []string{"7\n"}
	line, ok, err := lr.Next()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "47", line)
}

func TestLineReaderSeveralLinesInOneRead(t *testing.T) {
	lr := NewLineReader(&scriptedReader{chunks: []string{"10\n20\n30\n"}})

	var got []string
	for {
		line, ok, err := lr.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, line)
	}
	assert.Equal(t, []string{"10", "20", "30"}, got)
}

func TestLineReaderSkipsBlankLines(t *testing.T) {
	lr := NewLineReader(&scriptedReader{chunks: []string{"\r\n  \n55\n"}})

	line, ok, err := lr.Next()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "55", line)
}

func TestLineReaderInvalidUTF8(t *testing.T) {
	lr := NewLineReader(&scriptedReader{chunks: []string{"\xff\xfe\n12\n"}})

	_, ok, err := lr.Next()
	assert.ErrorIs(t, err, ErrDecode)
	assert.False(t, ok)

	line, ok, err := lr.Next()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "12", line)
}

func TestLineReaderEOFIsIdle(t *testing.T) {
	lr := NewLineReader(&scriptedReader{err: io.EOF})

	_, ok, err := lr.Next()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLineReaderPropagatesReadErrors(t *testing.T) {
	boom := errors.New("device unplugged")
	lr := NewLineReader(&scriptedReader{err: boom})

	_, _, err := lr.Next()
	assert.ErrorIs(t, err, boom)
}

func TestSourcePoll(t *testing.T) {
	src := NewSource(&scriptedReader{chunks: []string{"garbage\n", "\xff\n", "Moisture:38\n"}})

	_, ok, err := src.Poll()
	require.NoError(t, err)
	assert.False(t, ok, "malformed line must be skipped")

	_, ok, err = src.Poll()
	require.NoError(t, err)
	assert.False(t, ok, "undecodable line must be skipped")

	reading, ok, err := src.Poll()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 38.0, reading.SoilMoisture)

	_, ok, err = src.Poll()
	require.NoError(t, err)
	assert.False(t, ok)
}
