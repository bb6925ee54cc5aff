package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configured providers and connectivity",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	backend := "memory"
	if configStore.GetString("storage.postgres_dsn") != "" || os.Getenv("RECALL_POSTGRES_DSN") != "" {
		backend = "postgres"
	}
	if storePinger != nil {
		if err := storePinger.Ping(ctx); err != nil {
			cmd.Printf("storage:   %s (unreachable: %v)\n", backend, err)
		} else {
			cmd.Printf("storage:   %s (ok)\n", backend)
		}
	} else {
		cmd.Printf("storage:   %s\n", backend)
	}

	if embedderService == nil {
		cmd.Println("embedding: not configured (semantic search disabled)")
	} else if err := embedderService.Ping(ctx); err != nil {
		cmd.Printf("embedding: %s, %d dimensions (unreachable: %v)\n",
			embedderService.ModelName(), embedderService.Dimensions(), err)
	} else {
		cmd.Printf("embedding: %s, %d dimensions (ok)\n",
			embedderService.ModelName(), embedderService.Dimensions())
	}

	if llmService == nil {
		cmd.Println("llm:       not configured (extraction disabled)")
	} else if err := llmService.Ping(ctx); err != nil {
		cmd.Printf("llm:       %s (unreachable: %v)\n", llmService.ModelName(), err)
	} else {
		cmd.Printf("llm:       %s (ok)\n", llmService.ModelName())
	}

	return nil
}
