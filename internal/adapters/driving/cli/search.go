package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

var (
	searchLimit   int
	searchOffset  int
	searchFilters []string
	searchSort    []string
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Runs a full-text query against the search index.

Filters, sort or an offset switch to the faceted search, which also reports
facet counts:
  docsync search bank --filter Industry=Banking --filter Region=EMEA
  docsync search "" --sort updatedAt:desc --offset 20`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of results to skip")
	searchCmd.Flags().StringArrayVarP(&searchFilters, "filter", "f", nil, "filter as Field=Value (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchSort, "sort", nil, "sort as attribute:asc|desc")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	query := args[0]

	if len(searchFilters) == 0 && len(searchSort) == 0 && searchOffset == 0 {
		resp, err := searchService.Search(commandContext(cmd), query, searchLimit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if searchJSON {
			return printJSON(cmd, resp)
		}
		printHits(cmd, resp.Hits, 0)
		cmd.Printf("\n%d of ~%d results (%dms)\n", len(resp.Hits), resp.EstimatedTotalHits, resp.ProcessingTimeMs)
		return nil
	}

	filters, err := parseFilterFlags(searchFilters)
	if err != nil {
		return err
	}
	limit, offset := searchLimit, searchOffset
	page, err := searchService.Advanced(commandContext(cmd), domain.AdvancedSearchQuery{
		Query:   query,
		Limit:   &limit,
		Offset:  &offset,
		Filters: filters,
		Sort:    searchSort,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if searchJSON {
		return printJSON(cmd, page)
	}

	printHits(cmd, page.Hits, offset)
	cmd.Printf("\nPage %d, %d results total (%dms)\n",
		page.Pagination.Page, page.Pagination.Total, page.Search.ProcessingTime)
	return nil
}

// parseFilterFlags turns Field=Value pairs into a filter map.
func parseFilterFlags(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(raw))
	for _, pair := range raw {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid filter %q: expected Field=Value", pair)
		}
		filters[strings.TrimSpace(key)] = value
	}
	return filters, nil
}

func printHits(cmd *cobra.Command, hits []map[string]any, offset int) {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, hit := range hits {
		cmd.Printf("  [%d] %v %v\n", offset+i+1, hit[domain.FieldSFNumber], hit[domain.FieldClientName])
		if industry, ok := hit[domain.FieldIndustry].(string); ok && industry != "" {
			cmd.Printf("      Industry: %s\n", industry)
		}
	}
}
