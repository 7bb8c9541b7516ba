package httpapi

import (
	"net/http"
	"strings"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

func (s *Server) handleAdvancedSearch(w http.ResponseWriter, r *http.Request) {
	if s.ports.Search == nil {
		writeDomainError(w, domain.ErrSearchUnavailable)
		return
	}

	q, err := parseAdvancedQuery(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	page, err := s.ports.Search.Advanced(r.Context(), q)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": page.Hits,
		"meta": map[string]any{
			"pagination": page.Pagination,
			"search":     page.Search,
		},
	})
}

// parseAdvancedQuery reads query, limit, offset, filters[Key], sort and
// facets. List parameters may repeat or be comma separated.
func parseAdvancedQuery(r *http.Request) (domain.AdvancedSearchQuery, error) {
	values := r.URL.Query()
	q := domain.AdvancedSearchQuery{Query: values.Get("query")}

	var err error
	if q.Limit, err = queryInt(r, "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = queryInt(r, "offset"); err != nil {
		return q, err
	}

	for key, vals := range values {
		name, ok := strings.CutPrefix(key, "filters[")
		if !ok || !strings.HasSuffix(name, "]") || len(vals) == 0 {
			continue
		}
		if q.Filters == nil {
			q.Filters = make(map[string]string)
		}
		q.Filters[strings.TrimSuffix(name, "]")] = vals[0]
	}

	q.Sort = splitList(values["sort"])
	q.Facets = splitList(values["facets"])
	return q, nil
}

func splitList(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
