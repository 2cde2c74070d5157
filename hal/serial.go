//go:build !tinygo

package hal

import (
	"fmt"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// serialLogger writes CRLF-terminated lines to a UART, like the console of
// the firmware build.
type serialLogger struct {
	mu   sync.Mutex
	port *serial.Port
}

func openSerialLogger(device string, baud int) (*serialLogger, error) {
	if baud <= 0 {
		baud = 115200
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", device, err)
	}
	return &serialLogger{port: port}, nil
}

func (l *serialLogger) WriteLineString(s string) {
	l.WriteLineBytes([]byte(s))
}

func (l *serialLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.port == nil {
		return
	}
	l.port.Write(b)
	l.port.Write([]byte{'\r', '\n'})
}

func (l *serialLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.port == nil {
		return nil
	}
	err := l.port.Close()
	l.port = nil
	return err
}
