package httpapi

import (
	"fmt"
	"net/http"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/logger"
)

// requireIndex answers 503 when no index administration is wired.
func (s *Server) requireIndex(w http.ResponseWriter) bool {
	if s.ports.Index == nil {
		writeDomainError(w, domain.ErrSearchUnavailable)
		return false
	}
	return true
}

// writeAdminError reports a failed administrative operation, naming the
// step when one is known.
func writeAdminError(w http.ResponseWriter, action string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("%s failed: %v", action, err)
	}
	body := map[string]any{
		"success": false,
		"error":   fmt.Sprintf("%s failed: %v", action, err),
		"code":    code,
	}
	if step := domain.FailedStep(err); step != "" {
		body["step"] = step
	}
	writeJSON(w, status, body)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.requireIndex(w) {
		return
	}
	result, err := s.ports.Index.Refresh(r.Context())
	if err != nil {
		writeAdminError(w, "Index refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": result.Success,
		"message": result.Message,
		"data":    result.Stats,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireIndex(w) {
		return
	}
	stats, err := s.ports.Index.Stats(r.Context())
	if err != nil {
		writeAdminError(w, "Index stats", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": stats})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if !s.requireIndex(w) {
		return
	}
	if err := s.ports.Index.Clear(r.Context()); err != nil {
		writeAdminError(w, "Index clear", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Index cleared successfully",
	})
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if !s.requireIndex(w) {
		return
	}
	result, err := s.ports.Index.Rebuild(r.Context())
	if err != nil {
		writeAdminError(w, "Index rebuild", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": result.Message(),
		"data":    result,
	})
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	if !s.requireIndex(w) {
		return
	}
	if err := s.ports.Index.Configure(r.Context()); err != nil {
		writeAdminError(w, "Index configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Index configuration updated successfully",
	})
}

func (s *Server) handleConfigureComplete(w http.ResponseWriter, r *http.Request) {
	if !s.requireIndex(w) {
		return
	}
	report, err := s.ports.Index.ConfigureComplete(r.Context())
	if err != nil {
		writeAdminError(w, "Index configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "MeiliSearch index configured successfully with all fields",
		"data":    report,
	})
}
