package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/innodb-tools/ibdparser/pkg/page"
)

func pageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "page <file> <n>",
		Short: "Decode and print a single page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return err
			}
			sp, err := openSpace(args[0])
			if err != nil {
				return err
			}
			defer sp.Close()

			p, err := sp.Page(n)
			if err != nil {
				return err
			}

			rows := [][]string{
				{"offset", fmt.Sprint(p.Offset())},
				{"type", p.Type().String()},
				{"lsn", fmt.Sprint(p.LSN())},
				{"checksum", fmt.Sprint(p.Header().Checksum)},
				{"corrupt", fmt.Sprint(p.Corrupt())},
			}
			if prev, ok := p.Prev(); ok {
				rows = append(rows, []string{"prev", fmt.Sprint(prev)})
			}
			if next, ok := p.Next(); ok {
				rows = append(rows, []string{"next", fmt.Sprint(next)})
			}
			rows = append(rows, typeSpecificRows(p)...)

			printTable([]string{"field", "value"}, rows, flagCSV)
			return nil
		},
	}
}

func typeSpecificRows(p page.Page) [][]string {
	switch v := p.(type) {
	case *page.FSPPage:
		if v.Type() == page.TypeFspHdr {
			return [][]string{
				{"fsp_size_pages", fmt.Sprint(v.Header.SizePages)},
				{"fsp_free_limit", fmt.Sprint(v.Header.FreeLimit)},
			}
		}
		return nil
	case *page.IndexPage:
		return [][]string{
			{"index_id", fmt.Sprint(v.PageHeader.IndexID)},
			{"level", fmt.Sprint(v.PageHeader.Level)},
			{"n_recs", fmt.Sprint(v.PageHeader.NRecs)},
			{"n_dir_slots", fmt.Sprint(v.PageHeader.NDirSlots)},
		}
	case *page.InodePage:
		return [][]string{{"entries", fmt.Sprint(len(v.Entries))}}
	case *page.TrxSysPage:
		return nil
	case *page.UndoLogPage:
		return nil
	case *page.BlobPage:
		return [][]string{{"len", fmt.Sprint(v.Length)}}
	case *page.SDIPage:
		return nil
	case *page.IbufBitmapPage:
		return nil
	default:
		return nil
	}
}
