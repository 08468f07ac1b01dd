package main

import (
	"encoding/csv"
	"os"

	"github.com/olekukonko/tablewriter"
)

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
