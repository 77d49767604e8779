package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pgavlin/brotherql/internal/catalog"
	"github.com/pgavlin/brotherql/internal/config"
	"github.com/pgavlin/brotherql/internal/printer"
	"github.com/pgavlin/brotherql/internal/util"
)

// maxImageSize bounds the request bodies accepted by /print.
const maxImageSize = 32 << 20

type server struct {
	cfg     *config.Config
	station *station
	log     *slog.Logger
}

func (s *server) handlePrint(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	query := req.URL.Query()
	isPreview := query.Get("preview") != ""

	contents, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxImageSize))
	if err != nil {
		s.log.Warn("error reading request body", "error", err)
		http.Error(w, "cannot read request body", http.StatusBadRequest)
		return
	}
	img, err := util.DecodeImage(contents)
	if err != nil {
		http.Error(w, fmt.Sprintf("cannot decode image: %v", err), http.StatusBadRequest)
		return
	}

	job, err := s.cfg.NewJob()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	job.ID = uuid.NewString()
	job.Images = append(job.Images, img)
	if name := query.Get("media"); name != "" {
		m, ok := catalog.MediaByName(name)
		if !ok {
			http.Error(w, fmt.Sprintf("unknown media %q", name), http.StatusBadRequest)
			return
		}
		job.Media = &m
	}

	if isPreview {
		model := catalog.ModelByName(query.Get("model"))
		if !model.Known() {
			model = catalog.ModelByName(s.cfg.Printer.Model)
		}
		model, media, err := resolveTarget(req.Context(), s.station, model, job.Media)
		if err != nil {
			s.log.Warn("error resolving preview target", "error", err)
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Add("Content-Type", "image/png")
		if err = png.Encode(w, newPreview(media, rasterize(job, model, media))); err != nil {
			s.log.Warn("error encoding preview result", "error", err)
		}
		return
	}

	err = s.station.with(req.Context(), func(conn *printer.Connection) error {
		return conn.SendJob(job, nil)
	})
	if err != nil {
		s.log.Warn("print failed", "job_id", job.ID, "error", err)
		http.Error(w, err.Error(), printErrorStatus(err))
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "printed job %s\n", job.ID)
}

func (s *server) handleStatus(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	err := s.station.with(req.Context(), func(conn *printer.Connection) error {
		st, err := conn.RequestStatus()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "model=%v %v\n", conn.Model(), st)
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), printErrorStatus(err))
	}
}

// printErrorStatus maps a printer error to an HTTP status code.
func printErrorStatus(err error) int {
	for _, kind := range []error{
		printer.ErrIncompleteJob,
		printer.ErrUnknownMedia,
		printer.ErrUnsupportedHighResolution,
		printer.ErrImageWidthMismatch,
		printer.ErrImageHeightOutOfRange,
		printer.ErrImageHeightMismatch,
		printer.ErrImagesVaryInSize,
		printer.ErrInvalidCutCount,
	} {
		if errors.Is(err, kind) {
			return http.StatusUnprocessableEntity
		}
	}
	switch {
	case errors.Is(err, printer.ErrNotReady), errors.Is(err, printer.ErrDeviceError),
		errors.Is(err, printer.ErrOpenFailed), errors.Is(err, printer.ErrNotConnected):
		return http.StatusServiceUnavailable
	case errors.Is(err, printer.ErrStatusTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/print", s.handlePrint)
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

func serve(ctx context.Context, address string, s *server) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() { errs <- srv.ListenAndServe() }()
	s.log.Info("print server listening", "bind", address, "printer", s.station.address)

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an HTTP endpoint that prints posted images",
		Long: `Serve an HTTP endpoint that prints posted images.

  POST /print            print the image in the request body
  POST /print?preview=1  return the PNG preview of the converted label
  GET  /status           report the printer status

/print accepts ?media=NAME to override the configured media.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			st, err := ctx.station()
			if err != nil {
				return err
			}
			if bind == "" {
				bind = cfg.Server.Bind
			}
			return serve(cmd.Context(), bind, &server{cfg: cfg, station: st, log: logger})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Address to listen on (overrides server.bind)")
	return cmd
}
