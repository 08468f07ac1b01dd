package main

import (
	"encoding/csv"
	"os"

	"github.com/olekukonko/tablewriter"
)

// printTable renders rows either as a tablewriter box or, with --csv, as
// plain CSV — both subcommand styles spec.md §6 requires.
func printTable(header []string, rows [][]string, asCSV bool) {
	if asCSV {
		w := csv.NewWriter(os.Stdout)
		w.Write(header)
		w.WriteAll(rows)
		w.Flush()
		return
	}
	t := tablewriter.NewWriter(os.Stdout)
	t.SetHeader(header)
	t.AppendBulk(rows)
	t.Render()
}
