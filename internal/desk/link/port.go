// internal/desk/link/port.go
package link

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goburrow/serial"
)

// Open opens the desk UART. The controller speaks 8N1; only the device
// path and baud rate vary by installation.
func Open(address string, baud int, readTimeout time.Duration) (serial.Port, error) {
	port, err := serial.Open(&serial.Config{
		Address:  address,
		BaudRate: baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  readTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("link: open %s: %w", address, err)
	}
	return port, nil
}

// IsTimeout reports whether err is a read deadline expiring, the normal
// idle case on a quiet line.
func IsTimeout(err error) bool {
	return errors.Is(err, serial.ErrTimeout) || os.IsTimeout(err)
}

// GPIOLine drives a transmit-enable pin through a sysfs value file.
type GPIOLine struct {
	path string
}

func NewGPIOLine(path string) *GPIOLine {
	return &GPIOLine{path: path}
}

func (l *GPIOLine) Set(high bool) error {
	v := []byte("0")
	if high {
		v = []byte("1")
	}
	if err := os.WriteFile(l.path, v, 0o644); err != nil {
		return fmt.Errorf("link: gpio %s: %w", l.path, err)
	}
	return nil
}

// NopLine satisfies the enable-line contract where no pin is wired.
type NopLine struct{}

func (NopLine) Set(bool) error { return nil }
