package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

var indexJSON bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Administer the search index",
	Long:  `Refresh, rebuild, clear, configure and inspect the search index.`,
}

var indexRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Clear the index and rebuild it from published records",
	Args:  cobra.NoArgs,
	RunE:  runIndexRefresh,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Index every published record",
	Long: `Projects every published record into the index in batches.
Failed batches are counted and reported, not fatal.`,
	Args: cobra.NoArgs,
	RunE: runIndexRebuild,
}

var indexClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every document from the index",
	Args:  cobra.NoArgs,
	RunE:  runIndexClear,
}

var indexConfigureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Apply the default index settings",
	Args:  cobra.NoArgs,
	RunE:  runIndexConfigure,
}

var indexConfigureCompleteCmd = &cobra.Command{
	Use:   "configure-complete",
	Short: "Apply the complete attribute set and report the result",
	Args:  cobra.NoArgs,
	RunE:  runIndexConfigureComplete,
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics and settings",
	Args:  cobra.NoArgs,
	RunE:  runIndexStats,
}

func init() {
	indexCmd.PersistentFlags().BoolVar(&indexJSON, "json", false, "output results as JSON")

	indexCmd.AddCommand(indexRefreshCmd)
	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexClearCmd)
	indexCmd.AddCommand(indexConfigureCmd)
	indexCmd.AddCommand(indexConfigureCompleteCmd)
	indexCmd.AddCommand(indexStatsCmd)
	rootCmd.AddCommand(indexCmd)
}

func requireIndexAdmin() error {
	if indexAdmin == nil {
		return errors.New("index administration not configured")
	}
	return nil
}

func runIndexRefresh(cmd *cobra.Command, _ []string) error {
	if err := requireIndexAdmin(); err != nil {
		return err
	}

	cmd.Println("Refreshing index...")
	result, err := indexAdmin.Refresh(commandContext(cmd))
	if err != nil {
		return stepFailure("refresh", err)
	}
	if indexJSON {
		return printJSON(cmd, result)
	}
	cmd.Println(result.Message)
	printRebuildSummary(cmd, &result.Stats)
	return nil
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if err := requireIndexAdmin(); err != nil {
		return err
	}

	cmd.Println("Rebuilding index...")
	result, err := indexAdmin.Rebuild(commandContext(cmd))
	if err != nil {
		return stepFailure("rebuild", err)
	}
	if indexJSON {
		return printJSON(cmd, result)
	}
	cmd.Printf("Index rebuilt successfully. Indexed %d documents.\n", result.Indexed)
	printRebuildSummary(cmd, result)
	return nil
}

func printRebuildSummary(cmd *cobra.Command, result *domain.RebuildResult) {
	if result.RunID != "" {
		cmd.Printf("  Run: %s\n", result.RunID)
	}
	if result.Skipped > 0 {
		cmd.Printf("  Skipped: %d\n", result.Skipped)
	}
	for _, f := range result.Failures {
		cmd.Printf("  Batch %d (%d records) failed: %s\n", f.Batch, f.Size, f.Err)
	}
}

func runIndexClear(cmd *cobra.Command, _ []string) error {
	if err := requireIndexAdmin(); err != nil {
		return err
	}
	if err := indexAdmin.Clear(commandContext(cmd)); err != nil {
		return stepFailure("clear", err)
	}
	cmd.Println("Index cleared successfully")
	return nil
}

func runIndexConfigure(cmd *cobra.Command, _ []string) error {
	if err := requireIndexAdmin(); err != nil {
		return err
	}
	if err := indexAdmin.Configure(commandContext(cmd)); err != nil {
		return stepFailure("configure", err)
	}
	cmd.Println("Index configuration updated successfully")
	return nil
}

func runIndexConfigureComplete(cmd *cobra.Command, _ []string) error {
	if err := requireIndexAdmin(); err != nil {
		return err
	}
	report, err := indexAdmin.ConfigureComplete(commandContext(cmd))
	if err != nil {
		return stepFailure("configure-complete", err)
	}
	if indexJSON {
		return printJSON(cmd, report)
	}

	cmd.Println("Index configured with all fields")
	cmd.Printf("  Searchable attributes: %d\n", report.SearchableAttributesCount)
	cmd.Printf("  Filterable attributes: %d\n", report.FilterableAttributesCount)
	cmd.Printf("  Sortable attributes:   %d\n", report.SortableAttributesCount)
	cmd.Printf("  Documents:             %d\n", report.DocumentsCount)
	return nil
}

func runIndexStats(cmd *cobra.Command, _ []string) error {
	if err := requireIndexAdmin(); err != nil {
		return err
	}
	stats, err := indexAdmin.Stats(commandContext(cmd))
	if err != nil {
		return stepFailure("stats", err)
	}
	if indexJSON {
		return printJSON(cmd, stats)
	}

	cmd.Printf("Documents: %d\n", stats.NumberOfDocuments)
	cmd.Printf("Indexing:  %t\n", stats.IsIndexing)
	cmd.Printf("Searchable attributes: %d\n", len(stats.Settings.SearchableAttributes))
	cmd.Printf("Filterable attributes: %d\n", len(stats.Settings.FilterableAttributes))
	return nil
}

// stepFailure names the failing step of an administrative operation.
func stepFailure(op string, err error) error {
	if step := domain.FailedStep(err); step != "" {
		return fmt.Errorf("%s failed at %s: %w", op, step, err)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
