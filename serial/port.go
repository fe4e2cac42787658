package serial

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

var logger = log.New(os.Stdout, "[Serial] ", log.LstdFlags|log.Lshortfile)

// Config describes the serial link to the microcontroller.
type Config struct {
	DevicePath  string        // e.g. "/dev/ttyUSB0" or "/dev/ttyACM0"
	BaudRate    int           // line speed
	ReadTimeout time.Duration // upper bound for a single Read
	Settle      time.Duration // wait after open while the board resets
}

// DefaultConfig returns the settings used for an Arduino on USB.
func DefaultConfig() Config {
	return Config{
		DevicePath:  "/dev/ttyUSB0",
		BaudRate:    9600,
		ReadTimeout: 1 * time.Second,
		Settle:      2 * time.Second,
	}
}

// Port is an exclusively owned serial device. Reads return after at most
// ReadTimeout; a read that times out reports os.ErrDeadlineExceeded.
type Port struct {
	config    Config
	file      *os.File
	closeOnce sync.Once
	closeErr  error
}

// Open opens and configures the device, waits for the board to settle and
// discards anything buffered during the reset.
func Open(config Config) (*Port, error) {
	logger.Printf("Opening serial port %s at %d baud", config.DevicePath, config.BaudRate)

	if _, err := os.Stat(config.DevicePath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("device %s does not exist (common ports: /dev/ttyUSB0, /dev/ttyACM0)", config.DevicePath)
	}

	file, err := os.OpenFile(config.DevicePath, os.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", config.DevicePath, err)
	}

	if err := configure(file, config.BaudRate); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to configure %s: %w", config.DevicePath, err)
	}

	p := &Port{config: config, file: file}
	logger.Printf("Connected to Arduino on port %s", config.DevicePath)

	if config.Settle > 0 {
		time.Sleep(config.Settle)
	}
	if err := p.Flush(); err != nil {
		logger.Printf("Warning: could not flush input buffer: %v", err)
	}

	return p, nil
}

// Read reads whatever the device delivers within ReadTimeout.
func (p *Port) Read(b []byte) (int, error) {
	if p.config.ReadTimeout > 0 {
		if err := p.file.SetReadDeadline(time.Now().Add(p.config.ReadTimeout)); err != nil {
			return 0, err
		}
	}
	return p.file.Read(b)
}

// Flush discards unread input.
func (p *Port) Flush() error {
	return flushInput(p.file)
}

// Close releases the device. Only the first call closes the file.
func (p *Port) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.file.Close()
		logger.Println("Serial connection closed.")
	})
	return p.closeErr
}
