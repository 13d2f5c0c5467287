package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"memorybank/internal/application/commands"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <type>",
	Short: "List recorded revisions of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		history := commands.NewHistoryCommand(GetBank(), args[0], historyLimit)
		if err := history.Validate(); err != nil {
			return err
		}
		if _, err := loadBank(ctx); err != nil {
			return err
		}

		revs, err := history.Execute(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(revs) == 0 {
			fmt.Fprintln(out, "No revisions recorded.")
			return nil
		}
		for _, r := range revs {
			marker := ""
			if r.Created {
				marker = " (created)"
			}
			fmt.Fprintf(out, "%s  %016x  %-9s%s\n", r.RecordedAt.Format(time.RFC3339), r.Checksum, r.Status, marker)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", commands.DefaultHistoryLimit, "maximum revisions to show")
	rootCmd.AddCommand(historyCmd)
}
