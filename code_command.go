package main

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/spf13/cobra"

	"github.com/pgavlin/brotherql/internal/catalog"
	"github.com/pgavlin/brotherql/internal/label"
	"github.com/pgavlin/brotherql/internal/printer"
)

func newCodeCommand(ctx *commandContext) *cobra.Command {
	var flags jobFlags
	var symbology, modelName, output string

	cmd := &cobra.Command{
		Use:   "code TEXT",
		Short: "Print a QR or Data Matrix code sized to the loaded media",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sym, err := label.ParseSymbology(symbology)
			if err != nil {
				return err
			}
			job, err := flags.job(cmd, cfg)
			if err != nil {
				return err
			}
			// Codes are already black and white.
			job.Dither = false
			job.Rotate = 0

			if modelName == "" {
				modelName = cfg.Printer.Model
			}
			model := catalog.ModelByName(modelName)

			st, err := ctx.station()
			if err != nil {
				return err
			}
			model, media, err := resolveTarget(cmd.Context(), st, model, job.Media)
			if err != nil {
				return err
			}
			img, err := label.Code(sym, args[0], media, model)
			if err != nil {
				return err
			}

			if output != "" {
				var buf bytes.Buffer
				if err := png.Encode(&buf, img); err != nil {
					return fmt.Errorf("encode code: %w", err)
				}
				return writeOutput(cmd.OutOrStdout(), output, buf.Bytes())
			}

			job.Images = append(job.Images, img)
			job.Media = &media
			return st.with(cmd.Context(), func(conn *printer.Connection) error {
				return conn.SendJob(job, nil)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&symbology, "symbology", "s", "qr", "Code symbology: qr or datamatrix")
	cmd.Flags().StringVar(&modelName, "model", "", "Printer model, e.g. QL-700")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the code image to this PNG file instead of printing")
	return cmd
}
