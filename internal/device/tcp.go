package device

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/pgavlin/brotherql/internal/catalog"
)

const (
	// DefaultTCPPort is the raw printing port of Brother network printers.
	DefaultTCPPort = 9100
	// DefaultConnectTimeout bounds the TCP connection.
	DefaultConnectTimeout = 5 * time.Second
)

// A TCP sends jobs to a network printer's raw port. The network interface does not report status, so status reads
// always describe a ready printer.
type TCP struct {
	host           string
	port           int
	model          catalog.Model
	ConnectTimeout time.Duration

	conn net.Conn
}

// NewTCP creates a closed TCP transport. A port of 0 selects DefaultTCPPort.
func NewTCP(host string, port int, model catalog.Model) *TCP {
	if port == 0 {
		port = DefaultTCPPort
	}
	return &TCP{host: host, port: port, model: model, ConnectTimeout: DefaultConnectTimeout}
}

// Address returns the host:port the transport connects to.
func (t *TCP) Address() string {
	return net.JoinHostPort(t.host, strconv.Itoa(t.port))
}

func (t *TCP) Open() error {
	if t.conn != nil {
		return errors.New("connection already open")
	}
	conn, err := net.DialTimeout("tcp", t.Address(), t.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", t.Address(), err)
	}
	t.conn = conn
	return nil
}

func (t *TCP) Model() catalog.Model {
	return t.model
}

// ReadStatus always reports a ready printer.
func (t *TCP) ReadStatus(timeout time.Duration) ([]byte, error) {
	return readyFrame(t.model), nil
}

func (t *TCP) Write(b []byte, timeout time.Duration) error {
	if t.conn == nil {
		return errors.New("connection not open")
	}
	if len(b) == 0 {
		return nil
	}
	if timeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}
	if _, err := t.conn.Write(b); err != nil {
		return fmt.Errorf("write to %s: %w", t.Address(), err)
	}
	return nil
}

func (t *TCP) IsClosed() bool {
	return t.conn == nil
}

func (t *TCP) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

func (t *TCP) SelfReporting() bool {
	return false
}
