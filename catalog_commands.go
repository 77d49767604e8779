package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pgavlin/brotherql/internal/catalog"
	"github.com/pgavlin/brotherql/internal/device"
)

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "models",
		Short:       "List supported printer models",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, m := range catalog.Models() {
				rows = append(rows, []string{
					m.Name,
					fmt.Sprintf("%04x", m.USBProductID),
					strconv.Itoa(m.BytesPerLine * 8),
					yesNo(m.HighResolution),
					yesNo(m.TwoColor),
					yesNo(m.AllowsFeedMargin),
					fmt.Sprintf("%d-%d", m.ContinuousMinPx, m.ContinuousMaxPx),
				})
			}
			headers := []string{"Model", "USB ID", "Head dots", "High res", "Two-color", "Feed margin", "Length (dots)"}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, 2, 6))
			return nil
		},
	}
}

func newMediaCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "media",
		Short:       "List supported label media",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, m := range catalog.Medias() {
				length := "-"
				if m.BodyLengthPx > 0 {
					length = strconv.Itoa(m.BodyLengthPx)
				}
				rows = append(rows, []string{
					m.Name,
					m.Type.String(),
					m.Dimension(),
					strconv.Itoa(m.BodyWidthPx),
					length,
					strconv.Itoa(m.BytesPerLine * 8),
					yesNo(m.TwoColor),
				})
			}
			headers := []string{"Media", "Type", "Size", "Width (dots)", "Length (dots)", "Head dots", "Two-color"}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, 3, 4, 5))
			return nil
		},
	}
}

func newDiscoverCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "discover",
		Short:       "List Brother QL printers attached over USB",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			addresses, err := device.ListUSB()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(addresses) == 0 {
				fmt.Fprintln(out, "No printers found")
				return nil
			}
			rows := make([][]string, len(addresses))
			for i, a := range addresses {
				rows[i] = []string{a}
			}
			fmt.Fprintln(out, renderTable([]string{"Address"}, rows))
			return nil
		},
	}
}
