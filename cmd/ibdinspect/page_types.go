package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func pageTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "page-types <file>",
		Short: "Run-length encode the page-type sequence across the space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := openSpace(args[0])
			if err != nil {
				return err
			}
			defer sp.Close()

			regions, err := sp.EachPageTypeRegion()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(regions))
			for _, r := range regions {
				rows = append(rows, []string{
					fmt.Sprint(r.Start), fmt.Sprint(r.End), r.Type.String(), fmt.Sprint(r.Count),
				})
			}
			printTable([]string{"start", "end", "type", "count"}, rows, flagCSV)
			return nil
		},
	}
}
