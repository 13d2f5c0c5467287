package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Load the bank and report cache and reader statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadBank(context.Background()); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		c := rt.Cache.Stats()
		fmt.Fprintf(out, "cache:   %d/%d entries, %d hits, %d misses, %d evictions, %d reloads\n",
			c.CurrentSize, c.MaxSize, c.Hits, c.Misses, c.Evictions, c.Reloads)

		r := rt.Reader.Stats()
		fmt.Fprintf(out, "reader:  %d buffered, %d streamed, %d bytes, %d failures, %d timeouts\n",
			r.BufferedReads, r.StreamedReads, r.TotalBytesRead, r.Failures, r.Timeouts)

		if rt.Index != nil {
			fmt.Fprintf(out, "history: %s\n", rt.Index.Path())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
