package services

import (
	"strings"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// inlineTypeText is the only inline node type that carries searchable text.
const inlineTypeText = "text"

// Transformer flattens records into search documents.
// It holds no state; Transform is pure and deterministic.
type Transformer struct{}

// NewTransformer creates a transformer.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// ExtractText concatenates the text of a rich-text block tree.
// Only "text" inline children contribute. Children are joined by a space
// within a block, blocks are joined by a space, and the result is trimmed.
func (t *Transformer) ExtractText(blocks []domain.Block) string {
	if len(blocks) == 0 {
		return ""
	}

	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		texts := make([]string, 0, len(block.Children))
		for _, child := range block.Children {
			if child.Type == inlineTypeText {
				texts = append(texts, child.Text)
			}
		}
		parts = append(parts, strings.Join(texts, " "))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// FormatAttachmentsText renders the searchable text of a set of attachments:
// name, alternative text, caption, extension and MIME type of each, skipping
// empty values.
func (t *Transformer) FormatAttachmentsText(attachments []domain.Attachment) string {
	if len(attachments) == 0 {
		return ""
	}

	parts := make([]string, 0, len(attachments))
	for _, a := range attachments {
		parts = append(parts, joinNonEmpty(a.Name, a.AlternativeText, a.Caption, a.Ext, a.Mime))
	}
	return strings.Join(parts, " ")
}

// Transform projects a record onto its search document.
func (t *Transformer) Transform(rec *domain.Record) domain.SearchDocument {
	descriptionText := t.ExtractText(rec.Description)
	attachmentsText := t.FormatAttachmentsText(rec.Attachments)
	hasAttachments := len(rec.Attachments) > 0

	doc := domain.SearchDocument{
		ID:         rec.ID,
		DocumentID: rec.DocumentID,

		SFNumber:                  rec.SFNumber,
		UniqueID:                  rec.UniqueID,
		ClientName:                rec.ClientName,
		ClientType:                rec.ClientType,
		ClientContact:             rec.ClientContact,
		ClientContactBuyingCenter: rec.ClientContactBuyingCenter,
		ClientJourney:             rec.ClientJourney,
		DocumentConfidentiality:   rec.DocumentConfidentiality,
		DocumentType:              rec.DocumentType,
		DocumentSubType:           rec.DocumentSubType,
		DocumentValueRange:        rec.DocumentValueRange,
		DocumentOutcome:           rec.DocumentOutcome,
		LastStageChangeDate:       rec.LastStageChangeDate,
		Industry:                  rec.Industry,
		SubIndustry:               rec.SubIndustry,
		Service:                   rec.Service,
		SubService:                rec.SubService,
		BusinessUnit:              rec.BusinessUnit,
		Region:                    rec.Region,
		Country:                   rec.Country,
		State:                     rec.State,
		City:                      rec.City,
		Author:                    rec.Author,
		SMEs:                      rec.SMEs,
		CommercialProgram:         rec.CommercialProgram,
		Competitors:               rec.Competitors,

		PublishedAt: domain.FormatDate(rec.PublishedAt),
		CreatedAt:   domain.FormatDate(&rec.CreatedAt),
		UpdatedAt:   domain.FormatDate(&rec.UpdatedAt),
		Locale:      rec.Locale,

		Description:     descriptionText,
		DescriptionText: descriptionText,
		AttachmentsText: attachmentsText,

		Attachments:      transformAttachments(rec.Attachments),
		AttachmentsCount: len(rec.Attachments),
		HasAttachments:   hasAttachments,

		SearchableText: strings.ToLower(joinNonEmpty(
			rec.SFNumber,
			rec.UniqueID,
			rec.ClientName,
			rec.ClientContact,
			rec.ClientContactBuyingCenter,
			rec.ClientJourney,
			descriptionText,
			rec.DocumentConfidentiality,
			rec.DocumentValueRange,
			rec.DocumentOutcome,
			rec.Industry,
			rec.SubIndustry,
			rec.Service,
			rec.SubService,
			rec.State,
			rec.City,
			rec.CommercialProgram,
			rec.Author,
			rec.SMEs,
			rec.Competitors,
			attachmentsText,
		)),

		Filters: domain.SearchFilters{
			ClientType:              rec.ClientType,
			DocumentType:            rec.DocumentType,
			DocumentSubType:         rec.DocumentSubType,
			DocumentConfidentiality: rec.DocumentConfidentiality,
			DocumentOutcome:         rec.DocumentOutcome,
			Industry:                rec.Industry,
			SubIndustry:             rec.SubIndustry,
			Service:                 rec.Service,
			SubService:              rec.SubService,
			BusinessUnit:            rec.BusinessUnit,
			Region:                  rec.Region,
			Country:                 rec.Country,
			State:                   rec.State,
			City:                    rec.City,
			CommercialProgram:       rec.CommercialProgram,
			HasAttachments:          hasAttachments,
		},
	}

	return doc
}

// transformAttachments never returns nil so the indexed field is always a list.
func transformAttachments(attachments []domain.Attachment) []domain.SearchAttachment {
	out := make([]domain.SearchAttachment, 0, len(attachments))
	for _, a := range attachments {
		out = append(out, domain.SearchAttachment{
			ID:              a.ID,
			Name:            a.Name,
			AlternativeText: a.AlternativeText,
			Caption:         a.Caption,
			URL:             a.URL,
			Ext:             a.Ext,
			Mime:            a.Mime,
			Size:            a.Size,
			SearchableText:  joinNonEmpty(a.Name, a.AlternativeText, a.Caption),
		})
	}
	return out
}

func joinNonEmpty(values ...string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, " ")
}
