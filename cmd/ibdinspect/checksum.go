package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func checksumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checksum <file>",
		Short: "Verify every page's stored checksum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := openSpace(args[0])
			if err != nil {
				return err
			}
			defer sp.Close()

			var rows [][]string
			var bad int
			for n := uint64(0); n < sp.Pages(); n++ {
				p, err := sp.Page(n)
				if err != nil {
					rows = append(rows, []string{fmt.Sprint(n), "-", "ERROR: " + err.Error()})
					bad++
					continue
				}
				if p.Corrupt() {
					bad++
					rows = append(rows, []string{fmt.Sprint(n), p.Type().String(), "MISMATCH"})
				}
			}
			if len(rows) == 0 {
				rows = append(rows, []string{"-", "-", "all pages valid"})
			}
			printTable([]string{"page", "type", "status"}, rows, flagCSV)
			if bad > 0 {
				return fmt.Errorf("%d page(s) failed checksum verification", bad)
			}
			return nil
		},
	}
}
