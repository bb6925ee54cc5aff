package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemo-labs/recall/internal/core/domain"
)

const (
	// summaryRenderLimit bounds the record long summary in output.
	summaryRenderLimit = 300

	// chunkRenderLimit bounds each chunk snippet in output.
	chunkRenderLimit = 200
)

var (
	searchTopK   int
	searchJSON   bool
	searchDomain string
	searchSource string
	searchType   string
	searchTag    string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed content",
	Long: `Searches indexed content. A quoted phrase ("like this") looks up a
record by title; anything else runs semantic similarity search over
the indexed chunks.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top", "n", 0, "maximum number of semantic results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchDomain, "domain", "", "restrict to a domain")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "restrict to a source unit")
	searchCmd.Flags().StringVar(&searchType, "type", "", "restrict to a content type")
	searchCmd.Flags().StringVar(&searchTag, "tag", "", "restrict to a deploy tag")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	opts := domain.RetrievalOptions{
		TopK:        searchTopK,
		ContentType: domain.ContentType(searchType),
		SourceID:    searchSource,
		DeployTag:   searchTag,
	}

	results, err := retrievalService.Retrieve(cmd.Context(), searchDomain, args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Print(FormatResults(results))
	return nil
}

// FormatResults renders ranked results for terminal output. Exact-mode
// hits render the record; semantic hits render ranked snippets with a
// delimiter between entries.
func FormatResults(results *domain.RankedResults) string {
	if results == nil || results.Empty() {
		if results != nil && results.NotFound {
			return "Not found.\n"
		}
		return "No results found.\n"
	}

	var b strings.Builder

	if results.Record != nil {
		record := results.Record
		fmt.Fprintf(&b, "%s", record.Title)
		if record.Project != "" {
			fmt.Fprintf(&b, " (%s)", record.Project)
		}
		b.WriteString("\n")
		if record.Summary != "" {
			fmt.Fprintf(&b, "  %s\n", record.Summary)
		}
		if record.LongSummary != "" {
			fmt.Fprintf(&b, "  %s\n", clip(record.LongSummary, summaryRenderLimit))
		}
		if len(record.Tags) > 0 {
			fmt.Fprintf(&b, "  Tags: %s\n", strings.Join(record.Tags, ", "))
		}
		if record.Excerpt != "" {
			fmt.Fprintf(&b, "  > %s\n", clip(record.Excerpt, chunkRenderLimit))
		}
		return b.String()
	}

	for i, hit := range results.Chunks {
		if i > 0 {
			b.WriteString("---\n")
		}
		fmt.Fprintf(&b, "[%d] %s (%.2f)\n", i+1, describeLocation(hit.Chunk), hit.Score)
		fmt.Fprintf(&b, "    %s\n", clip(hit.Chunk.Text, chunkRenderLimit))
	}
	return b.String()
}

// describeLocation renders where a chunk came from.
func describeLocation(chunk domain.Chunk) string {
	loc := chunk.Location
	if loc.Path != "" {
		if loc.StartLine > 0 {
			return fmt.Sprintf("%s:%d-%d", loc.Path, loc.StartLine, loc.EndLine)
		}
		return loc.Path
	}
	if loc.ConversationID != "" {
		return fmt.Sprintf("%s #%d-%d", loc.ConversationID, loc.StartMessage, loc.EndMessage)
	}
	return chunk.SourceID
}

// clip truncates s to at most n runes, marking the cut.
func clip(s string, n int) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
