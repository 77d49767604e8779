package main

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgavlin/brotherql/internal/catalog"
	"github.com/pgavlin/brotherql/internal/raster"
	"github.com/pgavlin/brotherql/internal/util"
)

func newRasterCommand(ctx *commandContext) *cobra.Command {
	var flags jobFlags
	var modelName, output, rawOutput string

	cmd := &cobra.Command{
		Use:   "raster IMAGE...",
		Short: "Convert images without printing",
		Long: `Convert images exactly as 'brotherql print' would and write a PNG preview
of the labels. With --raw, also write the raster command stream, which can be
sent to a printer later, e.g. with 'cat stream.bin > /dev/usb/lp0'.

The printer is only contacted when --model or --media are not known.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			job, err := flags.job(cmd, cfg)
			if err != nil {
				return err
			}
			for _, source := range args {
				img, err := util.LoadImage(cmd.Context(), source)
				if err != nil {
					return err
				}
				job.Images = append(job.Images, img)
			}

			if modelName == "" {
				modelName = cfg.Printer.Model
			}
			model := catalog.Unknown
			if modelName != "" {
				if model = catalog.ModelByName(modelName); !model.Known() {
					return fmt.Errorf("unknown model %q (see `brotherql models`)", modelName)
				}
			}

			st, err := ctx.station()
			if err != nil {
				return err
			}
			model, media, err := resolveTarget(cmd.Context(), st, model, job.Media)
			if err != nil {
				return err
			}
			pages := rasterize(job, model, media)

			var buf bytes.Buffer
			if err := png.Encode(&buf, newPreview(media, pages)); err != nil {
				return fmt.Errorf("encode preview: %w", err)
			}
			if err := writeOutput(cmd.OutOrStdout(), output, buf.Bytes()); err != nil {
				return err
			}

			if rawOutput != "" {
				settings := raster.Settings{
					Model:          model,
					Media:          media,
					Lines:          pages[0].Height(),
					Autocut:        job.Autocut,
					CutEvery:       job.CutEvery,
					FeedAmount:     job.FeedAmount,
					HighResolution: job.HighResolution,
					TwoColor:       pages[0].TwoColor(),
				}
				buf.Reset()
				if err := raster.Encode(&buf, settings, pages); err != nil {
					return err
				}
				if err := writeOutput(cmd.OutOrStdout(), rawOutput, buf.Bytes()); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&modelName, "model", "", "Printer model, e.g. QL-700")
	cmd.Flags().StringVarP(&output, "output", "o", "preview.png", "Preview destination, or - for stdout")
	cmd.Flags().StringVar(&rawOutput, "raw", "", "Raster command stream destination, or - for stdout")
	return cmd
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
