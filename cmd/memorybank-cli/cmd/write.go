package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"memorybank/internal/application/commands"
)

var writeForce bool

var writeCmd = &cobra.Command{
	Use:   "write <relpath> <file|->",
	Short: "Write a file under the memory bank root",
	Long: `Write any file at a path relative to the memory bank root. Paths that
escape the root are rejected. Existing files are kept unless --force is set.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readInput(cmd, args[1])
		if err != nil {
			return err
		}

		write := commands.NewWriteFileCommand(GetBank(), args[0], content, writeForce)
		result, err := write.Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

func init() {
	writeCmd.Flags().BoolVarP(&writeForce, "force", "f", false, "overwrite an existing file")
	rootCmd.AddCommand(writeCmd)
}
