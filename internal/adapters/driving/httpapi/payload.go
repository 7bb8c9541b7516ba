package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// envelope is the {data: {...}} request body of record writes.
type envelope struct {
	Data map[string]json.RawMessage `json:"data"`
}

// decodeEnvelope reads a {data} body. A missing data object is invalid.
func decodeEnvelope(r *http.Request) (map[string]json.RawMessage, error) {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrInvalidInput, err)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: malformed body: %v", domain.ErrInvalidInput, err)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: body must contain a data object", domain.ErrInvalidInput)
	}
	return env.Data, nil
}

// decodeRecordPatch turns the data object of a write into a typed patch.
// Keys that are neither business fields nor known record attributes are
// rejected.
func decodeRecordPatch(data map[string]json.RawMessage, now time.Time) (domain.RecordPatch, error) {
	patch := domain.RecordPatch{Fields: make(map[string]string)}

	for key, raw := range data {
		switch key {
		case "locale":
			var locale string
			if err := unmarshalField(key, raw, &locale); err != nil {
				return patch, err
			}
			patch.Locale = &locale
		case "Description":
			var blocks []domain.Block
			if err := unmarshalField(key, raw, &blocks); err != nil {
				return patch, err
			}
			patch.Description = &blocks
		case "Attachments":
			ids, err := decodeAttachmentIDs(raw)
			if err != nil {
				return patch, err
			}
			patch.AttachmentIDs = &ids
		case "manualOverride":
			var override bool
			if err := unmarshalField(key, raw, &override); err != nil {
				return patch, err
			}
			patch.ManualOverride = &override
		case "publishedAt":
			var value any
			if err := unmarshalField(key, raw, &value); err != nil {
				return patch, err
			}
			directive, err := domain.ParsePublishDirective(true, value, now)
			if err != nil {
				return patch, err
			}
			patch.Publish = directive
		case "id", "documentId", "createdAt", "updatedAt":
			// Store-owned attributes echoed back by clients are ignored.
		default:
			if !domain.IsBusinessField(key) {
				return patch, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidInput, key)
			}
			var value *string
			if err := unmarshalField(key, raw, &value); err != nil {
				return patch, err
			}
			if value == nil {
				patch.Fields[key] = ""
			} else {
				patch.Fields[key] = *value
			}
		}
	}
	return patch, nil
}

// decodeAttachmentIDs accepts either bare ids or attachment objects.
func decodeAttachmentIDs(raw json.RawMessage) ([]int64, error) {
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err == nil {
		if ids == nil {
			ids = []int64{}
		}
		return ids, nil
	}

	var objects []struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(raw, &objects); err != nil {
		return nil, fmt.Errorf("%w: Attachments must be a list of ids", domain.ErrInvalidInput)
	}
	ids = make([]int64, 0, len(objects))
	for _, o := range objects {
		ids = append(ids, o.ID)
	}
	return ids, nil
}

func unmarshalField(key string, raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: field %q: %v", domain.ErrInvalidInput, key, err)
	}
	return nil
}

// recordFromPatch builds a new record from the data object of a create.
func recordFromPatch(patch domain.RecordPatch) (*domain.Record, error) {
	rec := &domain.Record{}
	if err := patch.Apply(rec); err != nil {
		return nil, err
	}
	if patch.AttachmentIDs != nil {
		rec.Attachments = make([]domain.Attachment, 0, len(*patch.AttachmentIDs))
		for _, id := range *patch.AttachmentIDs {
			rec.Attachments = append(rec.Attachments, domain.Attachment{ID: id})
		}
	}
	return rec, nil
}
