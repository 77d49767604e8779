package device

import (
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/pgavlin/brotherql/internal/catalog"
	"github.com/pgavlin/brotherql/internal/status"
)

// A Simulator is an in-memory printer. It records everything written to it and answers status reads with its
// current frame, or with scripted frames queued by Script.
type Simulator struct {
	mu            sync.Mutex
	model         catalog.Model
	frame         []byte
	script        [][]byte
	selfReporting bool
	open          bool
	writeErr      error
	reads         int
	tx            []byte
	txLines       []string
}

// NewSimulator creates a closed, self-reporting simulator of the given model with the given media loaded.
func NewSimulator(model catalog.Model, media catalog.Media) *Simulator {
	s := &Simulator{model: model, frame: make([]byte, status.FrameSize), selfReporting: true}
	s.frame[0], s.frame[1], s.frame[2], s.frame[3] = 0x80, 0x20, 0x42, 0x34
	s.frame[4] = model.StatusCode
	s.setMedia(media)
	return s
}

func (s *Simulator) setMedia(media catalog.Media) {
	s.frame[10] = byte(media.WidthMm)
	s.frame[11] = byte(media.Type)
	s.frame[17] = byte(media.LengthMm)
}

// SetMedia changes the loaded media.
func (s *Simulator) SetMedia(media catalog.Media) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setMedia(media)
}

// SetStatusType sets the status type of the current frame.
func (s *Simulator) SetStatusType(t status.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame[18] = byte(t)
}

// SetPhase sets the phase of the current frame.
func (s *Simulator) SetPhase(p status.Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame[19] = byte(p)
}

// SetErrors sets the error information bytes of the current frame.
func (s *Simulator) SetErrors(err1, err2 byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame[8], s.frame[9] = err1, err2
}

// SetSelfReporting controls whether the simulator claims to send status frames while printing.
func (s *Simulator) SetSelfReporting(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selfReporting = v
}

// FailWrites makes every following write fail with err. A nil err restores normal writes.
func (s *Simulator) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Frame returns the current frame with the given status type and phase.
func (s *Simulator) Frame(t status.Type, p status.Phase) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := append([]byte(nil), s.frame...)
	b[18], b[19] = byte(t), byte(p)
	return b
}

// Script queues frames returned by the next status reads, in order. A nil frame is a read timeout. Once the script
// is exhausted reads return the current frame again.
func (s *Simulator) Script(frames ...[]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append(s.script, frames...)
}

// Reads returns the number of status reads so far.
func (s *Simulator) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Tx returns every write as an uppercase hex string, one line per write.
func (s *Simulator) Tx() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.txLines) == 0 {
		return ""
	}
	return strings.Join(s.txLines, "\n") + "\n"
}

// Bytes returns the concatenation of every write.
func (s *Simulator) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.tx...)
}

// ClearTx forgets every recorded write.
func (s *Simulator) ClearTx() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tx, s.txLines = nil, nil
}

func (s *Simulator) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return errors.New("simulator already open")
	}
	s.open = true
	return nil
}

func (s *Simulator) Model() catalog.Model {
	return s.model
}

func (s *Simulator) ReadStatus(timeout time.Duration) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil, errors.New("simulator not open")
	}
	s.reads++
	if len(s.script) > 0 {
		b := s.script[0]
		s.script = s.script[1:]
		return append([]byte(nil), b...), nil
	}
	return append([]byte(nil), s.frame...), nil
}

func (s *Simulator) Write(b []byte, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return errors.New("simulator not open")
	}
	if s.writeErr != nil {
		return s.writeErr
	}
	s.tx = append(s.tx, b...)
	s.txLines = append(s.txLines, strings.ToUpper(hex.EncodeToString(b)))
	return nil
}

func (s *Simulator) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.open
}

func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}

func (s *Simulator) SelfReporting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selfReporting
}
