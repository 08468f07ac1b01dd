package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/innodb-tools/ibdparser/pkg/page"
)

func spaceHeaderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "space-header <file>",
		Short: "Print the FSP_HDR file-space header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := openSpace(args[0])
			if err != nil {
				return err
			}
			defer sp.Close()

			p, err := sp.Page(0)
			if err != nil {
				return err
			}
			fsp, ok := p.(*page.FSPPage)
			if !ok {
				return errs.Errorf(errs.InvalidBuffer, "page 0 is not an FSP_HDR page (type %s)", p.Type())
			}

			rows := [][]string{
				{"space_id", fmt.Sprint(sp.SpaceID())},
				{"pages", fmt.Sprint(sp.Pages())},
				{"page_size", fmt.Sprint(sp.PageSize())},
				{"size_bytes", fmt.Sprint(sp.Size())},
				{"system_space", fmt.Sprint(sp.SystemSpace())},
				{"fsp_size_pages", fmt.Sprint(fsp.Header.SizePages)},
				{"fsp_free_limit", fmt.Sprint(fsp.Header.FreeLimit)},
				{"fsp_flags", fmt.Sprint(fsp.Header.Flags)},
				{"fsp_frag_n_used", fmt.Sprint(fsp.Header.FragNUsed)},
				{"fsp_next_unused_seg_id", fmt.Sprint(fsp.Header.NextUnusedSegID)},
			}
			printTable([]string{"field", "value"}, rows, flagCSV)
			return nil
		},
	}
}
