package arduino

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"sensor-bridge/common"
)

var logger = log.New(os.Stdout, "[Arduino] ", log.LstdFlags|log.Lshortfile)

var (
	// ErrMalformedLine is returned for lines that are neither "<n>" nor "<label>:<n>".
	ErrMalformedLine = errors.New("malformed line")
	// ErrDecode is returned for lines that are not valid UTF-8.
	ErrDecode = errors.New("error decoding serial data")
)

// ParseLine parses one trimmed line sent by the board. Two shapes are
// accepted: a bare decimal integer ("45") or a single label/value pair
// ("Moisture:45"). Either way the integer is the soil moisture percentage.
func ParseLine(line string) (common.Reading, error) {
	if n, err := strconv.Atoi(line); err == nil {
		return common.Reading{SoilMoisture: float64(n)}, nil
	}

	if !strings.Contains(line, ":") {
		return common.Reading{}, fmt.Errorf("%w: invalid data received: %q", ErrMalformedLine, line)
	}

	parts := strings.Split(line, ":")
	if len(parts) != 2 {
		return common.Reading{}, fmt.Errorf("%w: invalid data received: %q", ErrMalformedLine, line)
	}

	n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return common.Reading{}, fmt.Errorf("%w: invalid data format: %q", ErrMalformedLine, line)
	}

	return common.Reading{SoilMoisture: float64(n)}, nil
}
