package device

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"

	"github.com/pgavlin/brotherql/internal/catalog"
	"github.com/pgavlin/brotherql/internal/status"
)

// DefaultBaud is the default serial port speed.
const DefaultBaud = 9600

// A Serial talks to a printer over a serial port, such as a Bluetooth RFCOMM device. Printers answer status
// requests over serial links, so the transport is self-reporting.
type Serial struct {
	name  string
	baud  int
	model catalog.Model

	// ReadTimeout bounds status reads. It is fixed when the port is opened.
	ReadTimeout time.Duration

	port io.ReadWriteCloser
}

// NewSerial creates a closed serial transport. A baud rate of 0 selects DefaultBaud.
func NewSerial(name string, baud int, model catalog.Model) *Serial {
	if baud == 0 {
		baud = DefaultBaud
	}
	return &Serial{name: name, baud: baud, model: model, ReadTimeout: time.Second}
}

func (s *Serial) Open() error {
	if s.port != nil {
		return errors.New("serial port already open")
	}
	port, err := serial.OpenPort(&serial.Config{Name: s.name, Baud: s.baud, ReadTimeout: s.ReadTimeout})
	if err != nil {
		return fmt.Errorf("open %s: %w", s.name, err)
	}
	s.port = port
	return nil
}

func (s *Serial) Model() catalog.Model {
	return s.model
}

// ReadStatus reads one frame. The port's read timeout applies to every chunk.
func (s *Serial) ReadStatus(timeout time.Duration) ([]byte, error) {
	if s.port == nil {
		return nil, errors.New("serial port not open")
	}
	return readFrame(s.port)
}

// readFrame reads a status frame from r. A read returning no data ends the frame early, and the frame is then
// dropped.
func readFrame(r io.Reader) ([]byte, error) {
	b := make([]byte, status.FrameSize)
	for n := 0; n < len(b); {
		m, err := r.Read(b[n:])
		n += m
		if err == io.EOF || (err == nil && m == 0) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *Serial) Write(b []byte, timeout time.Duration) error {
	if s.port == nil {
		return errors.New("serial port not open")
	}
	if _, err := s.port.Write(b); err != nil {
		return fmt.Errorf("write to %s: %w", s.name, err)
	}
	return nil
}

func (s *Serial) IsClosed() bool {
	return s.port == nil
}

func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}

func (s *Serial) SelfReporting() bool {
	return true
}
