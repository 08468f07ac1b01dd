// Command redoinspect is a read-only forensic inspector for InnoDB redo
// log files (spec.md §6, components C11/C12).
//
// Grounded on the teacher's cmd/demo_storage_architecture (open, walk,
// print) shape, restructured as a subcommand-first cobra tool matching
// cmd/ibdinspect's conventions.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagCSV bool

func main() {
	root := &cobra.Command{
		Use:   "redoinspect",
		Short: "Inspect InnoDB redo log files",
	}
	root.PersistentFlags().BoolVar(&flagCSV, "csv", false, "emit CSV instead of a table")
	root.AddCommand(headerCmd(), blocksCmd(), recordsCmd(), checkpointCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
