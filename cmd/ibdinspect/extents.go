package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/innodb-tools/ibdparser/pkg/page"
)

func extentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extents <file>",
		Short: "List every extent descriptor across the space's FSP_HDR/XDES pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := openSpace(args[0])
			if err != nil {
				return err
			}
			defer sp.Close()

			var rows [][]string
			for _, pn := range sp.EachXDESPage() {
				p, err := sp.Page(pn)
				if err != nil {
					return err
				}
				fsp, ok := p.(*page.FSPPage)
				if !ok {
					continue
				}
				for _, e := range fsp.Entries {
					if e.State == 0 {
						continue // unused tail entries past the space's actual extent count
					}
					rows = append(rows, []string{
						fmt.Sprint(pn), fmt.Sprint(e.StartPage), stateString(e.State), fmt.Sprint(e.FsegID),
					})
				}
			}
			printTable([]string{"descriptor_page", "start_page", "state", "fseg_id"}, rows, flagCSV)
			return nil
		},
	}
}

func stateString(s page.ExtentState) string {
	switch s {
	case page.ExtentFree:
		return "FREE"
	case page.ExtentFreeFrag:
		return "FREE_FRAG"
	case page.ExtentFullFrag:
		return "FULL_FRAG"
	case page.ExtentFSeg:
		return "FSEG"
	default:
		return "UNKNOWN"
	}
}
