// Package printer drives Brother QL printers: it validates jobs, sends them page by page, and watches the printer
// status while pages print.
package printer

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pgavlin/brotherql/internal/bitmap"
	"github.com/pgavlin/brotherql/internal/catalog"
	"github.com/pgavlin/brotherql/internal/logging"
	"github.com/pgavlin/brotherql/internal/raster"
	"github.com/pgavlin/brotherql/internal/status"
)

// A Connection owns one transport to one printer. It is not safe for concurrent use.
type Connection struct {
	t      Transport
	enc    *raster.Encoder
	clock  Clock
	policy PollPolicy
	log    *slog.Logger
}

// An Option configures a Connection.
type Option func(c *Connection)

// WithClock sets the clock used for poll and inter-page waits.
func WithClock(clock Clock) Option {
	return func(c *Connection) { c.clock = clock }
}

// WithPollPolicy sets the status polling and transport timeouts. Zero or negative fields keep their defaults.
func WithPollPolicy(p PollPolicy) Option {
	return func(c *Connection) { c.policy = p }
}

// WithLogger sets the connection's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Connection) { c.log = logging.OrNop(l) }
}

// NewConnection creates a closed connection over t.
func NewConnection(t Transport, opts ...Option) *Connection {
	c := &Connection{
		t:      t,
		clock:  SystemClock,
		policy: DefaultPollPolicy(),
		log:    logging.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.policy = c.policy.withDefaults()
	c.enc = raster.NewEncoder(transportWriter{c})
	return c
}

// transportWriter adapts the transport to the encoder. Write failures are transmission errors.
type transportWriter struct {
	c *Connection
}

func (w transportWriter) Write(b []byte) (int, error) {
	if err := w.c.t.Write(b, w.c.policy.WriteTimeout); err != nil {
		e := newError(ErrTransmission, -1)
		e.Err = err
		return 0, e
	}
	return len(b), nil
}

// Open opens the transport and resets the printer. Opening an open connection fails with ErrAlreadyOpen.
func (c *Connection) Open() error {
	if !c.t.IsClosed() {
		return newError(ErrAlreadyOpen, -1)
	}
	if err := c.t.Open(); err != nil {
		e := newError(ErrOpenFailed, -1)
		e.Err = err
		return e
	}
	if err := c.Reset(); err != nil {
		c.t.Close()
		return err
	}
	c.log.Debug("printer opened", "model", c.t.Model())
	return nil
}

// Close closes the transport.
func (c *Connection) Close() error {
	return c.t.Close()
}

// IsClosed returns true if the transport is closed.
func (c *Connection) IsClosed() bool {
	return c.t.IsClosed()
}

// Model returns the printer model.
func (c *Connection) Model() catalog.Model {
	return c.t.Model()
}

// MediaFor identifies the media described by a status.
func (c *Connection) MediaFor(s *status.Status) (catalog.Media, bool) {
	return s.Media()
}

// Reset selects raster mode, flushes any partial command, and initializes the printer.
func (c *Connection) Reset() error {
	if c.t.IsClosed() {
		return newError(ErrNotConnected, -1)
	}
	return c.enc.Reset()
}

// RequestStatus asks the printer for its status and reads the answer. It must not be called while printing. A
// closed or silent printer yields a synthetic status.
func (c *Connection) RequestStatus() (*status.Status, error) {
	if c.t.IsClosed() {
		return status.Parse(nil, c.t.Model()), nil
	}
	if err := c.enc.RequestStatus(); err != nil {
		return nil, err
	}
	s, err := c.ReadStatus()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return status.NewUnavailable(c.t.Model()), nil
	}
	return s, nil
}

// ReadStatus reads one status frame without requesting it. It returns nil if no frame arrived in time, and a
// synthetic status if the connection is closed.
func (c *Connection) ReadStatus() (*status.Status, error) {
	if c.t.IsClosed() {
		return status.Parse(nil, c.t.Model()), nil
	}
	b, err := c.t.ReadStatus(c.policy.ReadTimeout)
	if err != nil {
		e := newError(ErrTransmission, -1)
		e.Err = err
		return nil, e
	}
	if len(b) < status.FrameSize {
		return nil, nil
	}
	s := status.Parse(b, c.t.Model())
	c.log.Debug("status read", "status", s)
	return s, nil
}

// A ProgressFunc is called after each page with the page index and the last known status. Returning false stops
// the job after that page.
type ProgressFunc func(page int, s *status.Status) bool

// SendJob prints a job. It blocks until every page has printed or the job stopped.
//
// The job is validated before any page data is sent. For self-reporting transports, each page must finish printing
// within the poll budget; otherwise the job stops with ErrStatusTimeout. Pages already printed are not undone.
// A progress function returning false stops the job without error.
func (c *Connection) SendJob(job *Job, progress ProgressFunc) error {
	model := c.t.Model()
	if c.t.IsClosed() || !model.Known() {
		return newError(ErrNotConnected, -1)
	}
	if job == nil || len(job.Images) == 0 {
		return newError(ErrIncompleteJob, -1)
	}

	id := job.ID
	if id == "" {
		id = uuid.NewString()
	}
	log := c.log.With("job_id", id, "model", model.Name)

	if err := c.enc.SwitchToRaster(); err != nil {
		return err
	}
	st, err := c.RequestStatus()
	if err != nil {
		return err
	}
	if st.Type() != status.Ready {
		e := newError(ErrNotReady, -1)
		e.Status = st
		return e
	}

	media, err := c.resolveMedia(job, st)
	if err != nil {
		return err
	}
	twoColor := media.TwoColor && model.TwoColor

	pages := Raster(job, twoColor)
	if err := checkJob(job, model, media, pages); err != nil {
		log.Warn("job rejected", "media", media.Name, "error", err)
		return err
	}

	log.Info("job started", "media", media.Name, "pages", len(pages), "two_color", twoColor)

	settings := raster.Settings{
		Model:          model,
		Media:          media,
		Lines:          pages[0].Height(),
		Autocut:        job.Autocut,
		CutEvery:       job.CutEvery,
		FeedAmount:     job.FeedAmount,
		HighResolution: job.HighResolution,
		TwoColor:       twoColor,
	}
	log.Debug("sending control codes", "lines", settings.Lines, "feed", raster.FeedAmount(model, media, job.FeedAmount))
	if err := c.enc.ControlCodes(settings); err != nil {
		return err
	}

	for i, page := range pages {
		last := i == len(pages)-1
		if err := c.sendPage(page, media, twoColor, last); err != nil {
			return onPage(err, i)
		}

		var elapsed time.Duration
		if c.t.SelfReporting() {
			st, elapsed, err = c.awaitPrinted()
			if err != nil {
				return onPage(err, i)
			}
		}

		if progress != nil {
			reported := st
			if reported == nil {
				reported = status.NewUnavailable(model)
			}
			if !progress(i, reported) {
				log.Info("job stopped by caller", "page", i)
				return nil
			}
		}

		if err := c.checkPrinted(st, elapsed); err != nil {
			log.Warn("job stopped", "page", i, "error", err)
			return onPage(err, i)
		}
		log.Info("page printed", "page", i)

		if !last {
			c.clock.Sleep(job.Delay)
		}
	}

	log.Info("job finished", "pages", len(pages))
	return nil
}

// resolveMedia picks the media for a job from the printer status or, for printers that cannot report it, from the
// job.
func (c *Connection) resolveMedia(job *Job, st *status.Status) (catalog.Media, error) {
	if !c.t.SelfReporting() {
		if job.Media == nil {
			e := newError(ErrUnknownMedia, -1)
			e.Status = st
			return catalog.Media{}, e
		}
		return *job.Media, nil
	}

	media, ok := st.Media()
	if !ok {
		e := newError(ErrUnknownMedia, -1)
		e.Status = st
		return catalog.Media{}, e
	}
	if job.Media != nil && job.Media.TwoColor && job.Media.SameStock(media) {
		return *job.Media, nil
	}
	return media, nil
}

func (c *Connection) sendPage(page *bitmap.Page, media catalog.Media, twoColor, last bool) error {
	if err := c.enc.Page(page, media, twoColor); err != nil {
		return err
	}
	return c.enc.Print(last)
}

// awaitPrinted polls the printer until the page leaves the printing phase or the budget runs out. The returned
// status is nil if no frame arrived.
func (c *Connection) awaitPrinted() (*status.Status, time.Duration, error) {
	st, err := c.ReadStatus()
	if err != nil {
		return nil, 0, err
	}
	left := c.policy.Budget
	for left > 0 && (st == nil || st.Phase() == status.Printing) {
		left -= c.policy.Interval
		c.clock.Sleep(c.policy.Interval)
		if st, err = c.ReadStatus(); err != nil {
			return nil, c.policy.Budget - left, err
		}
	}
	return st, c.policy.Budget - left, nil
}

// checkPrinted decides whether the job may continue after a page.
func (c *Connection) checkPrinted(st *status.Status, elapsed time.Duration) error {
	var e *Error
	switch {
	case st == nil, st.Phase() == status.Printing:
		e = newError(ErrStatusTimeout, -1)
		e.Elapsed = elapsed
	case st.Type() == status.ErrorOccurred:
		e = newError(ErrDeviceError, -1)
	case st.Phase() != status.Waiting:
		e = newError(ErrNotReady, -1)
	default:
		return nil
	}
	e.Status = st
	return e
}
