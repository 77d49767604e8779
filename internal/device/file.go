package device

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pgavlin/brotherql/internal/catalog"
)

// A File buffers a job in memory and writes it to a file when closed. It is useful for sending the job to a printer
// later, e.g. with `cat job.bin > /dev/usb/lp0`.
type File struct {
	path  string
	model catalog.Model
	buf   *bytes.Buffer
}

// NewFile creates a closed file transport that writes to path as if it were a printer of the given model.
func NewFile(path string, model catalog.Model) *File {
	return &File{path: path, model: model}
}

// Path returns the output path.
func (f *File) Path() string {
	return f.path
}

func (f *File) Open() error {
	if f.buf != nil {
		return errors.New("file already open")
	}
	f.buf = new(bytes.Buffer)
	return nil
}

func (f *File) Model() catalog.Model {
	return f.model
}

// ReadStatus always reports a ready printer.
func (f *File) ReadStatus(timeout time.Duration) ([]byte, error) {
	return readyFrame(f.model), nil
}

func (f *File) Write(b []byte, timeout time.Duration) error {
	if f.buf == nil {
		return errors.New("file not open")
	}
	f.buf.Write(b)
	return nil
}

func (f *File) IsClosed() bool {
	return f.buf == nil
}

// Close writes the buffered bytes to the output path, truncating it. Closing a closed file does nothing.
func (f *File) Close() error {
	if f.buf == nil {
		return nil
	}
	buf := f.buf
	f.buf = nil
	if err := os.WriteFile(f.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

func (f *File) SelfReporting() bool {
	return false
}
