package cli

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemo-labs/recall/internal/core/domain"
)

var (
	indexProject string
	indexType    string
	indexRepo    bool
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a file or directory",
	Long: `Chunks, embeds and indexes the content under the given path.
Content type is inferred from the file extension unless --type is set.
With --repo, the path is treated as a repository: unchanged files are
skipped and progress is recorded for the next run.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexProject, "project", "", "project name attached to indexed units")
	indexCmd.Flags().StringVar(&indexType, "type", "", "force content type (code, conversation, dream, note)")
	indexCmd.Flags().BoolVar(&indexRepo, "repo", false, "treat the path as a repository with incremental skip")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	root := args[0]
	units, err := discoverUnits(root)
	if err != nil {
		return fmt.Errorf("discovering content: %w", err)
	}
	if len(units) == 0 {
		cmd.Println("Nothing to index.")
		return nil
	}

	var summary *domain.RunSummary
	if indexRepo {
		repo := domain.RepositoryState{
			RepoID:   filepath.Base(root),
			Location: root,
			Revision: combinedRevision(units),
		}
		summary, err = indexerService.IndexRepository(cmd.Context(), repo, units)
	} else {
		summary, err = indexerService.IndexAll(cmd.Context(), units)
	}
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed %d units (%d skipped, %d failed)\n",
		summary.Processed, summary.Skipped, summary.Failed)
	cmd.Printf("  %d chunks persisted, %d without embedding, %d records\n",
		summary.ChunksPersisted, summary.ChunksWithoutEmbedding, summary.RecordsPersisted)
	for _, failure := range summary.Failures {
		cmd.Printf("  failed: %s: %v\n", failure.SourceID, failure.Err)
	}
	return nil
}

// discoverUnits walks a path and builds one source unit per regular
// file. Hidden files and directories are skipped.
func discoverUnits(root string) ([]domain.SourceUnit, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	var paths []string
	if info.IsDir() {
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") && path != root {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		paths = []string{root}
	}
	sort.Strings(paths)

	units := make([]domain.SourceUnit, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		sum := sha256.Sum256(content)
		units = append(units, domain.SourceUnit{
			SourceID:    path,
			Title:       filepath.Base(path),
			Project:     indexProject,
			ContentType: unitContentType(path),
			Text:        string(content),
			Location:    domain.Location{Path: path},
			Revision:    hex.EncodeToString(sum[:]),
		})
	}
	return units, nil
}

// unitContentType maps a file to its content type, honouring the
// --type override.
func unitContentType(path string) domain.ContentType {
	if indexType != "" {
		return domain.ContentType(indexType)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".go", ".py", ".js", ".ts", ".rb":
		return domain.ContentCode
	case ".chat", ".transcript":
		return domain.ContentConversation
	default:
		return domain.ContentNote
	}
}

// combinedRevision derives a repository-level revision from the unit
// revisions so an unchanged tree is recognised as a whole.
func combinedRevision(units []domain.SourceUnit) string {
	h := sha256.New()
	for _, unit := range units {
		h.Write([]byte(unit.SourceID))
		h.Write([]byte(unit.Revision))
	}
	return hex.EncodeToString(h.Sum(nil))
}
