package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgavlin/brotherql/internal/printer"
	"github.com/pgavlin/brotherql/internal/status"
	"github.com/pgavlin/brotherql/internal/util"
)

func newPrintCommand(ctx *commandContext) *cobra.Command {
	var flags jobFlags

	cmd := &cobra.Command{
		Use:   "print IMAGE...",
		Short: "Print images, one label per image",
		Long: `Print images, one label per image.

Each IMAGE is a file path, an http(s) URL, or - for stdin. Images must match
the printable size of the loaded media; use 'brotherql media' to list sizes
and 'brotherql raster' to preview the converted labels.`,
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

			st, err := ctx.station()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return st.with(cmd.Context(), func(conn *printer.Connection) error {
				return conn.SendJob(job, func(page int, s *status.Status) bool {
					fmt.Fprintf(out, "Printed %s (%d/%d): %v\n", args[page], page+1, len(args), s)
					return cmd.Context().Err() == nil
				})
			})
		},
	}

	flags.register(cmd)
	return cmd
}
