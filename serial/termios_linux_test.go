//go:build linux

package serial

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestBaudFlag(t *testing.T) {
	tests := []struct {
		rate        int
		expected    uint32
		expectError bool
	}{
		{rate: 9600, expected: unix.B9600},
		{rate: 115200, expected: unix.B115200},
		{rate: 1200, expected: unix.B1200},
		{rate: 9601, expectError: true},
		{rate: 0, expectError: true},
	}

	for _, tt := range tests {
		flag, err := baudFlag(tt.rate)
		if tt.expectError {
			if err == nil {
				t.Errorf("Expected error for baud rate %d", tt.rate)
			}
			continue
		}
		if err != nil {
			t.Errorf("Unexpected error for baud rate %d: %v", tt.rate, err)
			continue
		}
		if flag != tt.expected {
			t.Errorf("Baud rate %d: expected flag %#o, got %#o", tt.rate, tt.expected, flag)
		}
	}
}

func TestSetRaw(t *testing.T) {
	term := &unix.Termios{
		Lflag: unix.ICANON | unix.ECHO,
		Cflag: unix.PARENB | unix.B38400,
	}

	setRaw(term, unix.B9600)

	if term.Lflag&unix.ICANON != 0 {
		t.Error("Expected canonical mode to be disabled")
	}
	if term.Cflag&unix.PARENB != 0 {
		t.Error("Expected parity to be disabled")
	}
	if term.Cflag&unix.CBAUD != unix.B9600 {
		t.Errorf("Expected speed B9600, got %#o", term.Cflag&unix.CBAUD)
	}
	if term.Cflag&unix.CS8 != unix.CS8 {
		t.Error("Expected 8 data bits")
	}
	if term.Cc[unix.VMIN] != 1 {
		t.Errorf("Expected VMIN 1, got %d", term.Cc[unix.VMIN])
	}
}
