package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

const (
	uriScheme = "docsync://"

	// recentRecords is the size of the records listing resource.
	recentRecords = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "records",
		Name:        "records",
		Description: "The most recently created records",
		MIMEType:    "application/json",
	}, s.handleRecordsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "records/{recordId}",
		Name:        "record",
		Description: "A single record with its attachments",
		MIMEType:    "application/json",
	}, s.handleRecordResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "health",
		Name:        "health",
		Description: "Reachability of the search engine and the enrichment API",
		MIMEType:    "application/json",
	}, s.handleHealthResource)
}

func (s *Server) handleRecordsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Records == nil {
		return jsonResource(req.Params.URI, []any{})
	}

	records, total, err := s.ports.Records.List(ctx, domain.RecordFilter{
		PublicationState: domain.PublicationPreview,
		Limit:            recentRecords,
	})
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	type recordInfo struct {
		ID         int64  `json:"id"`
		SFNumber   string `json:"sfNumber"`
		ClientName string `json:"clientName"`
		Published  bool   `json:"published"`
	}
	infos := make([]recordInfo, len(records))
	for i := range records {
		infos[i] = recordInfo{
			ID:         records[i].ID,
			SFNumber:   records[i].SFNumber,
			ClientName: records[i].ClientName,
			Published:  records[i].IsPublished(),
		}
	}

	return jsonResource(req.Params.URI, map[string]any{"total": total, "records": infos})
}

func (s *Server) handleRecordResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Records == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id, ok := extractRecordID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	rec, err := s.ports.Records.Get(ctx, id)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, rec)
}

func (s *Server) handleHealthResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Health == nil {
		return jsonResource(req.Params.URI, []any{})
	}
	return jsonResource(req.Params.URI, s.ports.Health.Check(ctx))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRecordID parses the id from docsync://records/{recordId}.
func extractRecordID(uri string) (int64, bool) {
	const prefix = uriScheme + "records/"

	rest, ok := strings.CutPrefix(uri, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
