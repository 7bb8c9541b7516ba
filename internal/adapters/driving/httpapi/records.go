package httpapi

import (
	"net/http"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// Record states reported in update metadata.
const (
	statePublished = "published"
	stateDraft     = "draft"
)

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	filter := domain.RecordFilter{
		PublicationState: domain.PublicationState(r.URL.Query().Get("publicationState")),
	}

	limit, err := firstInt(r, "pagination[limit]", "limit")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	offset, err := firstInt(r, "pagination[start]", "offset")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if limit != nil {
		filter.Limit = *limit
	}
	if offset != nil {
		filter.Offset = *offset
	}

	records, total, err := s.ports.Records.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if records == nil {
		records = []domain.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": records,
		"meta": map[string]any{
			"pagination": map[string]int{
				"start": filter.Offset,
				"limit": filter.Limit,
				"total": total,
			},
		},
	})
}

// firstInt reads the first of names that is present in the query.
func firstInt(r *http.Request, names ...string) (*int, error) {
	for _, name := range names {
		n, err := queryInt(r, name)
		if err != nil || n != nil {
			return n, err
		}
	}
	return nil, nil
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	rec, err := s.ports.Records.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rec})
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	data, err := decodeEnvelope(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	patch, err := decodeRecordPatch(data, s.now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if patch.ManualOverride != nil && *patch.ManualOverride {
		writeError(w, http.StatusBadRequest, codeInvalidInput,
			"Manual upload cannot create documents with manualOverride set")
		return
	}
	rec, err := recordFromPatch(patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	created, err := s.ports.Records.Create(r.Context(), rec)
	if err != nil {
		if created != nil {
			writeCommittedError(w, err, created)
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": created})
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	data, err := decodeEnvelope(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	patch, err := decodeRecordPatch(data, s.now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := s.ports.Records.Update(r.Context(), id, patch)
	if err != nil {
		if result != nil && result.Record != nil {
			writeCommittedError(w, err, result.Record)
			return
		}
		writeDomainError(w, err)
		return
	}
	writeUpdateResult(w, result, map[string]any{})
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	rec, err := s.ports.Records.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.ports.Records.Delete(r.Context(), id); err != nil {
		writeCommittedError(w, err, rec)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rec})
}

func (s *Server) handleAutoPopulate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	result, err := s.ports.Records.AutoPopulate(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeUpdateResult(w, result, map[string]any{
		"message": "Document auto-populated successfully",
		"source":  "manual_trigger",
	})
}

func writeUpdateResult(w http.ResponseWriter, result *domain.UpdateResult, meta map[string]any) {
	meta["operation"] = result.Operation
	meta["newState"] = stateDraft
	if result.Record != nil && result.Record.IsPublished() {
		meta["newState"] = statePublished
	}
	if len(result.Warnings) > 0 {
		meta["warnings"] = result.Warnings
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": result.Record, "meta": meta})
}

func defaultNow() time.Time { return time.Now().UTC() }
