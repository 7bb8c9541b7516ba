// Package bleve implements the search index port on an embedded bleve
// index, for local runs without a Meilisearch server.
//
// Writes are applied synchronously, so every returned task is already
// succeeded. The exact SearchDocument JSON is stored as internal metadata
// next to each indexed document so that hits round-trip unchanged.
package bleve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Verify interface compliance.
var _ driven.SearchIndex = (*Index)(nil)

const (
	docKeyPrefix = "doc:"
	settingsKey  = "settings"

	// facetSize bounds the distinct values reported per facet.
	facetSize = 100
)

// ErrClosed is returned by operations on a closed index.
var ErrClosed = errors.New("bleve index closed")

// Index holds one bleve index per index name.
type Index struct {
	mu      sync.RWMutex
	dir     string
	indexes map[string]bleve.Index
	tasks   map[int64]domain.IndexTask
	nextID  int64
	closed  bool
}

// New creates an embedded engine. An empty dir keeps every index in memory;
// otherwise each index lives in dir/<name>.bleve.
func New(dir string) *Index {
	return &Index{
		dir:     dir,
		indexes: make(map[string]bleve.Index),
		tasks:   make(map[int64]domain.IndexTask),
	}
}

// EnsureIndex opens or creates the named index.
func (ix *Index) EnsureIndex(_ context.Context, name, _ string) error {
	_, err := ix.open(name)
	return err
}

// UpdateSettings merges the non-nil parts of settings into the stored set.
// The field mapping is fixed; settings are kept for reporting.
func (ix *Index) UpdateSettings(_ context.Context, name string, settings domain.IndexSettings) (domain.IndexTask, error) {
	idx, err := ix.open(name)
	if err != nil {
		return domain.IndexTask{}, err
	}

	current, err := readSettings(idx)
	if err != nil {
		return domain.IndexTask{}, err
	}
	merged := mergeSettings(current, settings)

	raw, err := json.Marshal(merged)
	if err != nil {
		return domain.IndexTask{}, fmt.Errorf("encode settings: %w", err)
	}
	if err := idx.SetInternal([]byte(settingsKey), raw); err != nil {
		return domain.IndexTask{}, fmt.Errorf("store settings: %w", err)
	}
	return ix.complete(name, "settingsUpdate"), nil
}

// Settings returns the stored settings.
func (ix *Index) Settings(_ context.Context, name string) (domain.IndexSettings, error) {
	idx, err := ix.open(name)
	if err != nil {
		return domain.IndexSettings{}, err
	}
	return readSettings(idx)
}

// AddDocuments indexes docs in one batch, replacing existing ones by id.
func (ix *Index) AddDocuments(_ context.Context, name string, docs []domain.SearchDocument) (domain.IndexTask, error) {
	idx, err := ix.open(name)
	if err != nil {
		return domain.IndexTask{}, err
	}

	batch := idx.NewBatch()
	for i := range docs {
		key := domain.DocumentKey(docs[i].ID)
		raw, err := json.Marshal(docs[i])
		if err != nil {
			return domain.IndexTask{}, fmt.Errorf("encode document %s: %w", key, err)
		}
		fields, err := indexedFields(raw)
		if err != nil {
			return domain.IndexTask{}, fmt.Errorf("flatten document %s: %w", key, err)
		}
		if err := batch.Index(key, fields); err != nil {
			return domain.IndexTask{}, fmt.Errorf("index document %s: %w", key, err)
		}
		batch.SetInternal([]byte(docKeyPrefix+key), raw)
	}
	if err := idx.Batch(batch); err != nil {
		return domain.IndexTask{}, fmt.Errorf("apply batch: %w", err)
	}
	logger.Debug("bleve: indexed %d documents into %s", len(docs), name)
	return ix.complete(name, "documentAdditionOrUpdate"), nil
}

// DeleteAllDocuments removes every document, keeping settings.
func (ix *Index) DeleteAllDocuments(ctx context.Context, name string) (domain.IndexTask, error) {
	idx, err := ix.open(name)
	if err != nil {
		return domain.IndexTask{}, err
	}

	ids, err := allIDs(ctx, idx)
	if err != nil {
		return domain.IndexTask{}, err
	}
	batch := idx.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
		batch.DeleteInternal([]byte(docKeyPrefix + id))
	}
	if err := idx.Batch(batch); err != nil {
		return domain.IndexTask{}, fmt.Errorf("delete all: %w", err)
	}
	return ix.complete(name, "documentDeletion"), nil
}

// DeleteDocument removes one document. Absent ids succeed.
func (ix *Index) DeleteDocument(_ context.Context, name, id string) (domain.IndexTask, error) {
	idx, err := ix.open(name)
	if err != nil {
		return domain.IndexTask{}, err
	}

	batch := idx.NewBatch()
	batch.Delete(id)
	batch.DeleteInternal([]byte(docKeyPrefix + id))
	if err := idx.Batch(batch); err != nil {
		return domain.IndexTask{}, fmt.Errorf("delete document %s: %w", id, err)
	}
	return ix.complete(name, "documentDeletion"), nil
}

// Stats counts documents and the fields they carry. Indexing is never in
// progress because writes are synchronous.
func (ix *Index) Stats(ctx context.Context, name string) (domain.IndexStats, error) {
	idx, err := ix.open(name)
	if err != nil {
		return domain.IndexStats{}, err
	}

	count, err := idx.DocCount()
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("count documents: %w", err)
	}

	ids, err := allIDs(ctx, idx)
	if err != nil {
		return domain.IndexStats{}, err
	}
	dist := make(map[string]int64)
	for _, id := range ids {
		doc, err := rawDocument(idx, id)
		if err != nil {
			return domain.IndexStats{}, err
		}
		for field := range doc {
			dist[field]++
		}
	}

	return domain.IndexStats{
		NumberOfDocuments: int64(count),
		FieldDistribution: dist,
	}, nil
}

// Search runs a match query combined with exact filters.
// Highlighting and cropping are not supported; hits are returned as stored.
func (ix *Index) Search(ctx context.Context, name string, req domain.SearchRequest) (*domain.SearchResponse, error) {
	idx, err := ix.open(name)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	sr := bleve.NewSearchRequestOptions(buildQuery(req), limit, req.Offset, false)
	if sortBy := sortOrder(req.Sort); len(sortBy) > 0 {
		sr.SortBy(sortBy)
	}
	for _, field := range expandFacets(req.Facets) {
		sr.AddFacet(field, bleve.NewFacetRequest(field, facetSize))
	}

	res, err := idx.SearchInContext(ctx, sr)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]map[string]any, 0, len(res.Hits))
	for _, hit := range res.Hits {
		doc, err := rawDocument(idx, hit.ID)
		if err != nil {
			return nil, err
		}
		hits = append(hits, doc)
	}

	var facets map[string]map[string]int64
	if len(res.Facets) > 0 {
		facets = make(map[string]map[string]int64, len(res.Facets))
		for field, fr := range res.Facets {
			values := make(map[string]int64)
			if fr.Terms != nil {
				for _, term := range fr.Terms.Terms() {
					values[term.Term] = int64(term.Count)
				}
			}
			facets[field] = values
		}
	}

	return &domain.SearchResponse{
		Hits:               hits,
		EstimatedTotalHits: int64(res.Total),
		Query:              req.Query,
		ProcessingTimeMs:   res.Took.Milliseconds(),
		FacetDistribution:  facets,
	}, nil
}

// WaitForTask returns a completed task. Unknown uids are ErrNotFound.
func (ix *Index) WaitForTask(_ context.Context, uid int64, _ time.Duration) (domain.IndexTask, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	task, ok := ix.tasks[uid]
	if !ok {
		return domain.IndexTask{}, fmt.Errorf("task %d: %w", uid, domain.ErrNotFound)
	}
	return task, nil
}

// Health fails once the engine is closed.
func (ix *Index) Health(context.Context) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.closed {
		return ErrClosed
	}
	return nil
}

// Close closes every open index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return nil
	}
	ix.closed = true

	var errs []error
	for name, idx := range ix.indexes {
		if err := idx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	ix.indexes = nil
	return errors.Join(errs...)
}

// open returns the named index, creating it on first use.
func (ix *Index) open(name string) (bleve.Index, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: index name %q", domain.ErrInvalidInput, name)
	}

	ix.mu.RLock()
	idx, ok := ix.indexes[name]
	closed := ix.closed
	ix.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	if ok {
		return idx, nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return nil, ErrClosed
	}
	if idx, ok := ix.indexes[name]; ok {
		return idx, nil
	}

	idx, err := ix.create(name)
	if err != nil {
		return nil, err
	}
	ix.indexes[name] = idx
	return idx, nil
}

func (ix *Index) create(name string) (bleve.Index, error) {
	if ix.dir == "" {
		idx, err := bleve.NewMemOnly(newMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index %s: %w", name, err)
		}
		return idx, nil
	}

	path := filepath.Join(ix.dir, name+".bleve")
	if _, err := os.Stat(path); err == nil {
		idx, err := bleve.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open index %s: %w", path, err)
		}
		return idx, nil
	}

	if err := os.MkdirAll(ix.dir, 0700); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	logger.Info("creating index %s", path)
	idx, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("create index %s: %w", path, err)
	}
	return idx, nil
}

// complete records a finished task.
func (ix *Index) complete(name, kind string) domain.IndexTask {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.nextID++
	task := domain.IndexTask{
		UID:        ix.nextID,
		IndexUID:   name,
		Status:     domain.TaskStatusSucceeded,
		Type:       kind,
		EnqueuedAt: time.Now(),
	}
	ix.tasks[task.UID] = task
	return task
}

// newMapping indexes filter and date fields as exact keywords so they can
// be filtered, faceted and sorted. Everything else is analysed text.
func newMapping() mapping.IndexMapping {
	keyword := bleve.NewKeywordFieldMapping()

	filters := bleve.NewDocumentMapping()
	for _, field := range domain.FilterFieldNames() {
		filters.AddFieldMappingsAt(field, keyword)
	}

	doc := bleve.NewDocumentMapping()
	doc.AddSubDocumentMapping(domain.FiltersNamespace, filters)
	for _, field := range []string{"publishedAt", "createdAt", "updatedAt", "documentId", "locale"} {
		doc.AddFieldMappingsAt(field, keyword)
	}

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	return im
}

// indexedFields decodes a document for indexing. Boolean filters are
// indexed as "true"/"false" so they facet like strings.
func indexedFields(raw []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if filters, ok := fields[domain.FiltersNamespace].(map[string]any); ok {
		for k, v := range filters {
			if b, ok := v.(bool); ok {
				filters[k] = strconv.FormatBool(b)
			}
		}
	}
	return fields, nil
}

func buildQuery(req domain.SearchRequest) query.Query {
	var text query.Query
	if q := strings.TrimSpace(req.Query); q != "" {
		mq := bleve.NewMatchQuery(q)
		mq.SetOperator(query.MatchQueryOperatorAnd)
		text = mq
	} else {
		text = bleve.NewMatchAllQuery()
	}
	if len(req.Filters) == 0 {
		return text
	}

	clauses := []query.Query{text}
	for _, f := range req.Filters {
		tq := bleve.NewTermQuery(f.Value)
		tq.SetField(f.Field)
		clauses = append(clauses, tq)
	}
	return bleve.NewConjunctionQuery(clauses...)
}

// sortOrder converts "field:desc" entries to bleve's "-field" form.
func sortOrder(sort []string) []string {
	out := make([]string, 0, len(sort))
	for _, s := range sort {
		field, dir, _ := strings.Cut(s, ":")
		if field == "" {
			continue
		}
		if dir == "desc" {
			field = "-" + field
		}
		out = append(out, field)
	}
	return out
}

// expandFacets replaces "filters.*" with every field of the namespace.
func expandFacets(facets []string) []string {
	out := make([]string, 0, len(facets))
	for _, f := range facets {
		if f == domain.FiltersNamespace+".*" {
			for _, name := range domain.FilterFieldNames() {
				out = append(out, domain.FiltersNamespace+"."+name)
			}
			continue
		}
		out = append(out, f)
	}
	return out
}

// allIDs lists every document id in the index.
func allIDs(ctx context.Context, idx bleve.Index) ([]string, error) {
	count, err := idx.DocCount()
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	if count == 0 {
		return nil, nil
	}
	sr := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	res, err := idx.SearchInContext(ctx, sr)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func rawDocument(idx bleve.Index, id string) (map[string]any, error) {
	raw, err := idx.GetInternal([]byte(docKeyPrefix + id))
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return doc, nil
}

func readSettings(idx bleve.Index) (domain.IndexSettings, error) {
	raw, err := idx.GetInternal([]byte(settingsKey))
	if err != nil {
		return domain.IndexSettings{}, fmt.Errorf("load settings: %w", err)
	}
	var s domain.IndexSettings
	if raw == nil {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.IndexSettings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

func mergeSettings(current, update domain.IndexSettings) domain.IndexSettings {
	if update.SearchableAttributes != nil {
		current.SearchableAttributes = update.SearchableAttributes
	}
	if update.FilterableAttributes != nil {
		current.FilterableAttributes = update.FilterableAttributes
	}
	if update.SortableAttributes != nil {
		current.SortableAttributes = update.SortableAttributes
	}
	if update.DisplayedAttributes != nil {
		current.DisplayedAttributes = update.DisplayedAttributes
	}
	if update.RankingRules != nil {
		current.RankingRules = update.RankingRules
	}
	if update.Synonyms != nil {
		current.Synonyms = update.Synonyms
	}
	return current
}
