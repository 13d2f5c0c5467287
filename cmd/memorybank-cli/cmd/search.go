package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"memorybank/internal/application/commands"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search document titles and lines",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if _, err := loadBank(ctx); err != nil {
			return err
		}

		results, err := commands.NewSearchCommand(GetBank(), strings.Join(args, " ")).Execute(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No results found.")
			return nil
		}
		for _, r := range results {
			if r.Line == 0 {
				fmt.Fprintf(out, "%s  %s\n", r.Type, r.MatchedText)
				continue
			}
			fmt.Fprintf(out, "%s:%d  %s\n", r.Type, r.Line, r.MatchedText)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
