package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/innodb-tools/ibdparser/pkg/redo"
)

func headerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "header <logfile...>",
		Short: "Print each file's header (group id, start lsn, creator)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, path := range args {
				f, err := redo.Open(path)
				if err != nil {
					return err
				}
				rows = append(rows, []string{
					path, fmt.Sprint(f.GroupID), fmt.Sprint(f.StartLSN), fmt.Sprint(f.FileNo), f.Creator, fmt.Sprint(f.NumBlocks()),
				})
				f.Close()
			}
			printTable([]string{"file", "group_id", "start_lsn", "file_no", "creator", "blocks"}, rows, flagCSV)
			return nil
		},
	}
}
