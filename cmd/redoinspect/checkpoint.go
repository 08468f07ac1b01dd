package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/innodb-tools/ibdparser/pkg/redo"
)

func checkpointCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkpoint <logfile...>",
		Short: "Print both checkpoint slots and which one is active",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, path := range args {
				f, err := redo.Open(path)
				if err != nil {
					return err
				}
				for i, cp := range f.Checkpoints {
					active := f.ActiveCheckpoint != nil && *f.ActiveCheckpoint == cp
					rows = append(rows, []string{
						path, fmt.Sprint(i), fmt.Sprint(cp.Number), fmt.Sprint(cp.LSN),
						fmt.Sprint(cp.Valid), fmt.Sprint(active),
					})
				}
				f.Close()
			}
			printTable([]string{"file", "slot", "number", "lsn", "valid", "active"}, rows, flagCSV)
			return nil
		},
	}
}
