//go:build !linux

package serial

import (
	"fmt"
	"os"
	"runtime"
)

func baudFlag(rate int) (uint32, error) {
	return 0, fmt.Errorf("serial configuration is not supported on %s", runtime.GOOS)
}

func configure(file *os.File, rate int) error {
	_, err := baudFlag(rate)
	return err
}

func flushInput(file *os.File) error {
	return nil
}
