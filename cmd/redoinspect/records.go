package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/innodb-tools/ibdparser/pkg/redo"
)

func recordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "records <logfile...>",
		Short: "Walk and decode every redo record in the group",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := redo.OpenGroup(args)
			if err != nil {
				return err
			}
			defer g.Close()

			r, err := redo.NewReader(g)
			if err != nil {
				return err
			}

			var rows [][]string
			for {
				rec, err := r.Next()
				if err != nil {
					return err
				}
				if rec == nil {
					break
				}
				rows = append(rows, recordRow(rec))
			}
			printTable([]string{"lsn_start", "lsn_end", "kind", "space_id", "page_no", "single"}, rows, flagCSV)
			return nil
		},
	}
}

func recordRow(rec *redo.Record) []string {
	return []string{
		fmt.Sprint(rec.LSNStart), fmt.Sprint(rec.LSNEnd), rec.Kind.String(),
		fmt.Sprint(rec.SpaceID), fmt.Sprint(rec.PageNumber), fmt.Sprint(rec.SingleRecord),
	}
}
