package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"memorybank/internal/application/commands"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents with their metadata status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if _, err := loadBank(ctx); err != nil {
			return err
		}

		docs, err := commands.NewListDocumentsCommand(GetBank()).Execute(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, d := range docs {
			fmt.Fprintf(out, "%-15s %-9s %7d  %s\n", d.Type, d.Status, d.Size, d.Path)
			for _, ve := range d.ValidationErrors {
				fmt.Fprintf(out, "  ! %s\n", ve)
			}
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <type>",
	Short: "Print a document",
	Long: `Print the content of one document.

Types: projectbrief, productContext, activeContext, systemPatterns,
techContext, progress`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		show := commands.NewShowDocumentCommand(GetBank(), args[0])
		if err := show.Validate(); err != nil {
			return err
		}
		if _, err := loadBank(ctx); err != nil {
			return err
		}

		rec, err := show.Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rec.Content)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}
