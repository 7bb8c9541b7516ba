// Package meilisearch implements the search index port against a
// Meilisearch server.
package meilisearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	meili "github.com/meilisearch/meilisearch-go"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Verify interface compliance.
var _ driven.SearchIndex = (*Index)(nil)

// createWait bounds the wait for an index creation task.
const createWait = 30 * time.Second

// Index is a long-lived Meilisearch client shared by all index operations.
type Index struct {
	client meili.ServiceManager
	host   string
}

// New creates a client for the server at host. apiKey may be empty.
func New(host, apiKey string) *Index {
	var opts []meili.Option
	if apiKey != "" {
		opts = append(opts, meili.WithAPIKey(apiKey))
	}
	return &Index{
		client: meili.New(host, opts...),
		host:   host,
	}
}

// EnsureIndex creates the index when it does not exist and waits for the
// creation task.
func (ix *Index) EnsureIndex(ctx context.Context, name, primaryKey string) error {
	_, err := ix.client.GetIndexWithContext(ctx, name)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("get index %s: %w", name, err)
	}

	logger.Info("creating index %s", name)
	info, err := ix.client.CreateIndexWithContext(ctx, &meili.IndexConfig{Uid: name, PrimaryKey: primaryKey})
	if err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, createWait)
	defer cancel()
	task, err := ix.client.WaitForTaskWithContext(waitCtx, info.TaskUID, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("wait for index %s: %w", name, err)
	}
	// A concurrent creator may have won; that failure is harmless.
	if task.Status == meili.TaskStatusFailed && task.Error.Code != "index_already_exists" {
		return fmt.Errorf("create index %s: %s", name, task.Error.Message)
	}
	return nil
}

// UpdateSettings applies the non-nil parts of settings.
func (ix *Index) UpdateSettings(ctx context.Context, name string, settings domain.IndexSettings) (domain.IndexTask, error) {
	info, err := ix.client.Index(name).UpdateSettingsWithContext(ctx, &meili.Settings{
		SearchableAttributes: settings.SearchableAttributes,
		FilterableAttributes: settings.FilterableAttributes,
		SortableAttributes:   settings.SortableAttributes,
		DisplayedAttributes:  settings.DisplayedAttributes,
		RankingRules:         settings.RankingRules,
		Synonyms:             settings.Synonyms,
	})
	if err != nil {
		return domain.IndexTask{}, fmt.Errorf("update settings: %w", err)
	}
	return toTask(info), nil
}

// Settings returns the applied attribute lists.
func (ix *Index) Settings(ctx context.Context, name string) (domain.IndexSettings, error) {
	s, err := ix.client.Index(name).GetSettingsWithContext(ctx)
	if err != nil {
		return domain.IndexSettings{}, fmt.Errorf("get settings: %w", err)
	}
	return domain.IndexSettings{
		SearchableAttributes: s.SearchableAttributes,
		FilterableAttributes: s.FilterableAttributes,
		SortableAttributes:   s.SortableAttributes,
		DisplayedAttributes:  s.DisplayedAttributes,
		RankingRules:         s.RankingRules,
		Synonyms:             s.Synonyms,
	}, nil
}

// AddDocuments enqueues documents for indexing.
func (ix *Index) AddDocuments(ctx context.Context, name string, docs []domain.SearchDocument) (domain.IndexTask, error) {
	info, err := ix.client.Index(name).AddDocumentsWithContext(ctx, docs)
	if err != nil {
		return domain.IndexTask{}, fmt.Errorf("add documents: %w", err)
	}
	return toTask(info), nil
}

// DeleteAllDocuments enqueues removal of every document.
func (ix *Index) DeleteAllDocuments(ctx context.Context, name string) (domain.IndexTask, error) {
	info, err := ix.client.Index(name).DeleteAllDocumentsWithContext(ctx)
	if err != nil {
		return domain.IndexTask{}, fmt.Errorf("delete all documents: %w", err)
	}
	return toTask(info), nil
}

// DeleteDocument enqueues removal of one document.
func (ix *Index) DeleteDocument(ctx context.Context, name, id string) (domain.IndexTask, error) {
	info, err := ix.client.Index(name).DeleteDocumentWithContext(ctx, id)
	if err != nil {
		return domain.IndexTask{}, fmt.Errorf("delete document %s: %w", id, err)
	}
	return toTask(info), nil
}

// Stats returns document counts and the indexing flag.
func (ix *Index) Stats(ctx context.Context, name string) (domain.IndexStats, error) {
	s, err := ix.client.Index(name).GetStatsWithContext(ctx)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("get stats: %w", err)
	}
	return domain.IndexStats{
		NumberOfDocuments: s.NumberOfDocuments,
		IsIndexing:        s.IsIndexing,
		FieldDistribution: s.FieldDistribution,
	}, nil
}

// Search runs a query. Filters are rendered as `field = "value"` clauses
// combined with AND.
func (ix *Index) Search(ctx context.Context, name string, req domain.SearchRequest) (*domain.SearchResponse, error) {
	sr := &meili.SearchRequest{
		Limit:                 int64(req.Limit),
		Offset:                int64(req.Offset),
		Sort:                  req.Sort,
		Facets:                req.Facets,
		AttributesToHighlight: req.AttributesToHighlight,
		AttributesToCrop:      req.AttributesToCrop,
		CropLength:            int64(req.CropLength),
	}
	if filters := renderFilters(req.Filters); len(filters) > 0 {
		sr.Filter = filters
	}

	resp, err := ix.client.Index(name).SearchWithContext(ctx, req.Query, sr)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := &domain.SearchResponse{
		EstimatedTotalHits: resp.EstimatedTotalHits,
		Query:              resp.Query,
		ProcessingTimeMs:   resp.ProcessingTimeMs,
	}
	if err := reshape(resp.Hits, &out.Hits); err != nil {
		return nil, fmt.Errorf("decode hits: %w", err)
	}
	if resp.FacetDistribution != nil {
		if err := reshape(resp.FacetDistribution, &out.FacetDistribution); err != nil {
			return nil, fmt.Errorf("decode facets: %w", err)
		}
	}
	if out.EstimatedTotalHits == 0 && resp.TotalHits > 0 {
		out.EstimatedTotalHits = resp.TotalHits
	}
	return out, nil
}

// WaitForTask polls a task until it finishes or ctx ends.
func (ix *Index) WaitForTask(ctx context.Context, uid int64, interval time.Duration) (domain.IndexTask, error) {
	task, err := ix.client.WaitForTaskWithContext(ctx, uid, interval)
	if err != nil {
		return domain.IndexTask{}, fmt.Errorf("wait for task %d: %w", uid, err)
	}
	return domain.IndexTask{
		UID:        task.UID,
		IndexUID:   task.IndexUID,
		Status:     string(task.Status),
		Type:       string(task.Type),
		EnqueuedAt: task.EnqueuedAt,
		Error:      task.Error.Message,
	}, nil
}

// Health checks that the server answers.
func (ix *Index) Health(ctx context.Context) error {
	if _, err := ix.client.HealthWithContext(ctx); err != nil {
		return fmt.Errorf("meilisearch at %s: %w", ix.host, err)
	}
	return nil
}

// Close releases the client. The HTTP client needs no teardown.
func (ix *Index) Close() error {
	return nil
}

func toTask(info *meili.TaskInfo) domain.IndexTask {
	if info == nil {
		return domain.IndexTask{}
	}
	return domain.IndexTask{
		UID:        info.TaskUID,
		IndexUID:   info.IndexUID,
		Status:     string(info.Status),
		Type:       string(info.Type),
		EnqueuedAt: info.EnqueuedAt,
	}
}

// filterEscaper escapes the only two characters the filter grammar treats
// specially inside a double-quoted value.
var filterEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func renderFilters(filters []domain.FieldFilter) []string {
	out := make([]string, 0, len(filters))
	for _, f := range filters {
		out = append(out, f.Field+` = "`+filterEscaper.Replace(f.Value)+`"`)
	}
	return out
}

// reshape converts loosely typed client output into a concrete shape.
func reshape(in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func isNotFound(err error) bool {
	var apiErr *meili.Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
