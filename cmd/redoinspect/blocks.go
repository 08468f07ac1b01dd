package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/innodb-tools/ibdparser/pkg/redo"
)

func blocksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blocks <logfile...>",
		Short: "Print every block's header fields and checksum status",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := redo.OpenGroup(args)
			if err != nil {
				return err
			}
			defer g.Close()

			var rows [][]string
			for fi, f := range g.Files {
				for bi := 0; bi < f.NumBlocks(); bi++ {
					b, err := f.Block(bi)
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						fmt.Sprint(fi), fmt.Sprint(bi), fmt.Sprint(b.Header.BlockNumber),
						fmt.Sprint(b.Header.Flush), fmt.Sprint(b.UsedLen), fmt.Sprint(b.Header.FirstRecGroup),
						fmt.Sprint(b.Header.CheckpointNo), fmt.Sprint(b.ChecksumValid),
					})
				}
			}
			printTable([]string{"file", "block", "block_no", "flush", "used_len", "first_rec_group", "checkpoint_no", "checksum_valid"}, rows, flagCSV)
			return nil
		},
	}
}
