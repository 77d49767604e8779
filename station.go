package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/pgavlin/brotherql/internal/config"
	"github.com/pgavlin/brotherql/internal/device"
	"github.com/pgavlin/brotherql/internal/printer"
)

// lockRetryDelay is the interval between attempts to take a busy printer lock.
const lockRetryDelay = 250 * time.Millisecond

// A station serializes access to one printer. Within a process jobs take turns on a mutex; across processes they
// take turns on a lock file named after the printer address.
type station struct {
	address string
	lockDir string
	policy  printer.PollPolicy
	log     *slog.Logger

	// open creates the transport for an address.
	open func(address string) (device.Device, error)

	mu sync.Mutex
}

func newStation(cfg *config.Config, logger *slog.Logger) *station {
	return &station{
		address: cfg.Printer.Address,
		lockDir: cfg.Printer.LockDir,
		policy:  cfg.PollPolicy(),
		log:     logger,
		open:    device.Open,
	}
}

// lockName maps a printer address to a lock file name.
func lockName(address string) string {
	if address == "" {
		address = "usb"
	}
	var b strings.Builder
	for _, r := range address {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String() + ".lock"
}

func (s *station) lock(ctx context.Context) (func(), error) {
	if s.lockDir == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(s.lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory %q: %w", s.lockDir, err)
	}
	path := filepath.Join(s.lockDir, lockName(s.address))
	lock := flock.New(path)
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire printer lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("printer %s is busy", s.address)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			s.log.Warn("failed to release printer lock", "lock", path, "error", err)
		}
	}, nil
}

// with opens the printer, calls fn, and closes the printer. Closing file printers writes the file, so a close
// error is returned when fn succeeded.
func (s *station) with(ctx context.Context, fn func(conn *printer.Connection) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	dev, err := s.open(s.address)
	if err != nil {
		return err
	}
	conn := printer.NewConnection(dev, printer.WithPollPolicy(s.policy), printer.WithLogger(s.log))
	if err := conn.Open(); err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close printer: %w", cerr)
		}
	}()
	return fn(conn)
}
