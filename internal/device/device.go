// Package device implements the transports used to reach Brother QL printers: USB, TCP, serial ports, files, and an
// in-memory simulator.
package device

import (
	"time"

	"github.com/pgavlin/brotherql/internal/catalog"
	"github.com/pgavlin/brotherql/internal/status"
)

// BrotherVendorID is Brother's USB vendor id.
const BrotherVendorID = 0x04f9

// A Device is a printer transport. Every Device satisfies printer.Transport.
type Device interface {
	Open() error
	Model() catalog.Model
	ReadStatus(timeout time.Duration) ([]byte, error)
	Write(b []byte, timeout time.Duration) error
	IsClosed() bool
	Close() error
	SelfReporting() bool
}

// readyFrame returns the status frame reported by transports that cannot read one from the printer: ready, waiting
// to receive, with unknown media.
func readyFrame(model catalog.Model) []byte {
	b := make([]byte, status.FrameSize)
	b[0], b[1], b[2] = 0x80, 0x20, 0x42
	b[4] = model.StatusCode
	b[11] = byte(catalog.UnknownMedia)
	b[18] = byte(status.Ready)
	b[19] = byte(status.Waiting)
	return b
}
