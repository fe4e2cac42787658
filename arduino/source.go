package arduino

import (
	"errors"
	"io"

	"sensor-bridge/common"
)

// Source turns lines from the board into readings. Undecodable and malformed
// lines are logged and skipped; they never surface as errors.
type Source struct {
	lines *LineReader
}

// NewSource reads lines from r.
func NewSource(r io.Reader) *Source {
	return &Source{lines: NewLineReader(r)}
}

// Poll handles at most one line. ok is false when nothing usable arrived.
// err is only set for read failures on the underlying port.
func (s *Source) Poll() (reading common.Reading, ok bool, err error) {
	line, ok, err := s.lines.Next()
	switch {
	case errors.Is(err, ErrDecode):
		logger.Println("Error decoding serial data")
		return common.Reading{}, false, nil
	case err != nil:
		return common.Reading{}, false, err
	case !ok:
		return common.Reading{}, false, nil
	}

	reading, err = ParseLine(line)
	if err != nil {
		logger.Printf("Warning: %v", err)
		return common.Reading{}, false, nil
	}

	logger.Printf("Received from Arduino: %.0f%%", reading.SoilMoisture)
	return reading, true, nil
}
