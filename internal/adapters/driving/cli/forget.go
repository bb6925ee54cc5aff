package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var forgetCmd = &cobra.Command{
	Use:   "forget [source-id]",
	Short: "Remove a source from the index",
	Long: `Removes a source unit's chunks and extraction record from the
index. The source identifier is the path or conversation ID shown in
search results.`,
	Args: cobra.ExactArgs(1),
	RunE: runForget,
}

func init() {
	rootCmd.AddCommand(forgetCmd)
}

func runForget(cmd *cobra.Command, args []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	if err := indexerService.RemoveSource(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}
