package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/innodb-tools/ibdparser/pkg/describer"
	"github.com/innodb-tools/ibdparser/pkg/ibdtype"
	"github.com/innodb-tools/ibdparser/pkg/record"
)

func indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Walk or search a B+tree index by its root page number",
	}
	cmd.AddCommand(indexDumpCmd(), indexSearchCmd())
	return cmd
}

func openIndex(file string, root uint64) (*record.Index, describer.Describer, error) {
	d, ok, err := loadDescriber()
	if err != nil {
		return nil, describer.Describer{}, err
	}
	if !ok {
		return nil, describer.Describer{}, errs.New(errs.InvalidSpecification, "index commands require --describer")
	}
	sp, err := openSpace(file)
	if err != nil {
		return nil, describer.Describer{}, err
	}
	return record.Open(sp, d, root), d, nil
}

func indexDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file> <root>",
		Short: "Walk every record at level 0, in key order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return err
			}
			ix, d, err := openIndex(args[0], root)
			if err != nil {
				return err
			}
			c, err := ix.CursorAtMin(record.Forward, false)
			if err != nil {
				return err
			}
			header := []string{"origin"}
			for _, col := range d.KeyCols {
				header = append(header, col.Name)
			}
			for _, col := range d.RowCols {
				header = append(header, col.Name)
			}

			var rows [][]string
			for {
				rec, err := c.Record()
				if err != nil {
					return err
				}
				if rec == nil {
					break
				}
				rows = append(rows, recordRow(rec))
			}
			printTable(header, rows, flagCSV)
			return nil
		},
	}
}

func indexSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <file> <root> <key...>",
		Short: "Binary-search the index for an exact key",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return err
			}
			ix, d, err := openIndex(args[0], root)
			if err != nil {
				return err
			}
			keyText := args[2:]
			if len(keyText) != len(d.KeyCols) {
				return errs.Errorf(errs.InvalidSpecification, "describer has %d key columns, got %d key values", len(d.KeyCols), len(keyText))
			}
			key := make([]ibdtype.Value, len(keyText))
			for i, col := range d.KeyCols {
				v, err := ibdtype.ParseValue(col.Spec, keyText[i])
				if err != nil {
					return err
				}
				key[i] = v
			}
			rec, err := ix.BinarySearch(key, nil)
			if err != nil {
				return err
			}
			if rec == nil {
				fmt.Println("not found")
				return nil
			}
			header := []string{"origin"}
			for _, col := range d.KeyCols {
				header = append(header, col.Name)
			}
			for _, col := range d.RowCols {
				header = append(header, col.Name)
			}
			printTable(header, [][]string{recordRow(rec)}, flagCSV)
			return nil
		},
	}
}

func recordRow(rec *record.Record) []string {
	row := []string{fmt.Sprint(rec.Origin)}
	for _, f := range rec.Key {
		row = append(row, f.Value.String())
	}
	for _, f := range rec.Row {
		row = append(row, f.Value.String())
	}
	return row
}
