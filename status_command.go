package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgavlin/brotherql/internal/printer"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the printer status and loaded media",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.station()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return st.with(cmd.Context(), func(conn *printer.Connection) error {
				s, err := conn.RequestStatus()
				if err != nil {
					return err
				}

				rows := [][]string{
					{"Model", conn.Model().Name},
					{"Status", s.Type().String()},
					{"Phase", s.Phase().String()},
					{"Media type", s.MediaType().String()},
				}
				if media, ok := conn.MediaFor(s); ok {
					rows = append(rows,
						[]string{"Media", fmt.Sprintf("%s (%s)", media.Name, media.Dimension())},
						[]string{"Printable", fmt.Sprintf("%d x %d dots", media.BodyWidthPx, media.BodyLengthPx)},
					)
				} else {
					rows = append(rows, []string{"Media", "unknown"})
				}
				rows = append(rows, []string{"Synthetic", yesNo(s.Synthetic())})
				for _, e := range s.Errors() {
					rows = append(rows, []string{"Error", e.Message()})
				}
				fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows))
				return nil
			})
		},
	}
}
