package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"memorybank/internal/application/commands"
)

var errUnhealthy = errors.New("memory bank is unhealthy")

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that every document exists on disk",
	Long: `Check the memory bank root and every document without modifying
anything. Exits with status 1 when any issue is found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res := commands.NewHealthCommand(GetBank()).Execute(context.Background())

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, res.Summary)
		for _, issue := range res.Issues {
			fmt.Fprintf(out, "  - %s\n", issue)
		}
		if !res.IsHealthy {
			return errUnhealthy
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
