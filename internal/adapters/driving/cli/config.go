package cli

import (
	"errors"
	"sort"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change configuration values.

Keys use dot notation, e.g.:
  storage.postgres_dsn   Postgres connection string
  embedding.provider     ollama, openai or none
  llm.provider           ollama, openai, anthropic or none
  index.domain           default domain tag for indexed records`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	keys := []string{
		"storage.postgres_dsn",
		"embedding.provider", "embedding.base_url", "embedding.model",
		"embedding.batch_size", "embedding.batches_per_second",
		"llm.provider", "llm.base_url", "llm.model",
		"index.domain",
	}
	sort.Strings(keys)

	cmd.Printf("Config file: %s\n\n", configStore.Path())
	for _, key := range keys {
		if value, ok := configStore.Get(key); ok {
			cmd.Printf("  %s = %v\n", key, value)
		}
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	if err := configStore.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}
