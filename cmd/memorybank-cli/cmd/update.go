package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"memorybank/internal/application/commands"
)

var updateCmd = &cobra.Command{
	Use:   "update <type> <file|->",
	Short: "Replace a document's content",
	Long: `Replace the content of a document with a file, or stdin when the
second argument is "-". Front-matter problems are reported but do not
block the write.

Examples:
  memorybank-cli update progress notes.md
  echo "..." | memorybank-cli update activeContext -`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readInput(cmd, args[1])
		if err != nil {
			return err
		}

		ctx := context.Background()
		update := commands.NewUpdateDocumentCommand(GetBank(), args[0], content)
		if err := update.Validate(); err != nil {
			return err
		}
		if _, err := loadBank(ctx); err != nil {
			return err
		}

		result, err := update.Execute(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, result.Message)
		for _, ve := range result.Record.ValidationErrors {
			fmt.Fprintf(out, "  ! %s\n", ve)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
