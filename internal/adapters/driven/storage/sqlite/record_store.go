package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// recordStore implements driven.RecordStore.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

const recordColumns = `id, document_id, locale, fields, description, published_at, created_at, updated_at, manual_override`

// Create inserts a record and links its attachments by ID.
func (s *recordStore) Create(ctx context.Context, rec *domain.Record) error {
	fields, description, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if rec.DocumentID == "" {
		rec.DocumentID = uuid.NewString()
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
		INSERT INTO records (document_id, locale, sf_number, fields, description, published_at, created_at, updated_at, manual_override)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.DocumentID, rec.Locale, rec.SFNumber, fields, description,
		formatTimePtr(rec.PublishedAt), formatTime(now), formatTime(now), boolToInt(rec.ManualOverride))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: SF_Number %s already exists", domain.ErrAlreadyExists, rec.SFNumber)
	}
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading record id: %w", err)
	}

	if err := linkAttachments(ctx, tx, id, rec.AttachmentIDs()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing record: %w", err)
	}

	rec.ID = id
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return nil
}

// Update replaces a stored record. A nil Attachments slice keeps the
// existing links.
func (s *recordStore) Update(ctx context.Context, rec *domain.Record) error {
	fields, description, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var documentID, createdAt string
	err = tx.QueryRowContext(ctx, "SELECT document_id, created_at FROM records WHERE id = ?", rec.ID).
		Scan(&documentID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading record: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE records SET locale = ?, sf_number = ?, fields = ?, description = ?,
			published_at = ?, updated_at = ?, manual_override = ?
		WHERE id = ?
	`, rec.Locale, rec.SFNumber, fields, description,
		formatTimePtr(rec.PublishedAt), formatTime(now), boolToInt(rec.ManualOverride), rec.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: another document with SF_Number %s already exists", domain.ErrAlreadyExists, rec.SFNumber)
	}
	if err != nil {
		return fmt.Errorf("updating record: %w", err)
	}

	if rec.Attachments != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM record_attachments WHERE record_id = ?", rec.ID); err != nil {
			return fmt.Errorf("unlinking attachments: %w", err)
		}
		if err := linkAttachments(ctx, tx, rec.ID, rec.AttachmentIDs()); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing record: %w", err)
	}

	rec.DocumentID = documentID
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = now
	return nil
}

// Delete removes a record; links cascade.
func (s *recordStore) Delete(ctx context.Context, id int64) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Get retrieves a record with attachments populated.
func (s *recordStore) Get(ctx context.Context, id int64) (*domain.Record, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM records WHERE id = ?", id)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, err
	}
	if rec.Attachments, err = s.Attachments(ctx, id); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns a page of records, newest first.
func (s *recordStore) List(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, int, error) {
	where := ""
	if filter.PublicationState == domain.PublicationLive {
		where = " WHERE published_at IS NOT NULL"
	}

	var total int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records"+where).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting records: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM records"+where+" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("querying records: %w", err)
	}
	records, err := collectRecords(rows)
	if err != nil {
		return nil, 0, err
	}

	for i := range records {
		if records[i].Attachments, err = s.Attachments(ctx, records[i].ID); err != nil {
			return nil, 0, err
		}
	}
	return records, total, nil
}

// ListPublished returns every published record with attachments, by ID.
func (s *recordStore) ListPublished(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE published_at IS NOT NULL ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying published records: %w", err)
	}
	records, err := collectRecords(rows)
	if err != nil {
		return nil, err
	}

	linked, err := s.attachmentsWhere(ctx, "r.published_at IS NOT NULL")
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Attachments = linked[records[i].ID]
		if records[i].Attachments == nil {
			records[i].Attachments = []domain.Attachment{}
		}
	}
	return records, nil
}

// FindBySFNumber returns the record holding sf other than excludeID.
func (s *recordStore) FindBySFNumber(ctx context.Context, sf string, excludeID int64) (*domain.Record, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE sf_number = ? AND id != ? ORDER BY id LIMIT 1",
		sf, excludeID)
	rec, err := scanRecord(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

// Attachments returns the attachments linked to a record, in link order.
func (s *recordStore) Attachments(ctx context.Context, id int64) ([]domain.Attachment, error) {
	var exists int
	err := s.store.db.QueryRowContext(ctx, "SELECT 1 FROM records WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking record: %w", err)
	}

	linked, err := s.attachmentsWhere(ctx, "r.id = ?", id)
	if err != nil {
		return nil, err
	}
	if linked[id] == nil {
		return []domain.Attachment{}, nil
	}
	return linked[id], nil
}

// SaveAttachment inserts or replaces media metadata.
func (s *recordStore) SaveAttachment(ctx context.Context, att *domain.Attachment) error {
	if att == nil {
		return domain.ErrInvalidInput
	}

	var id any
	if att.ID != 0 {
		id = att.ID
	}
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO attachments (id, name, alternative_text, caption, url, ext, mime, size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			alternative_text = excluded.alternative_text,
			caption = excluded.caption,
			url = excluded.url,
			ext = excluded.ext,
			mime = excluded.mime,
			size = excluded.size
	`, id, att.Name, att.AlternativeText, att.Caption, att.URL, att.Ext, att.Mime, att.Size)
	if err != nil {
		return fmt.Errorf("saving attachment: %w", err)
	}
	if att.ID == 0 {
		if att.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("reading attachment id: %w", err)
		}
	}
	return nil
}

// attachmentsWhere loads linked attachments grouped by record ID.
func (s *recordStore) attachmentsWhere(ctx context.Context, cond string, args ...any) (map[int64][]domain.Attachment, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT ra.record_id, a.id, a.name, a.alternative_text, a.caption, a.url, a.ext, a.mime, a.size
		FROM record_attachments ra
		JOIN attachments a ON a.id = ra.attachment_id
		JOIN records r ON r.id = ra.record_id
		WHERE `+cond+`
		ORDER BY ra.record_id, ra.position
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying attachments: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]domain.Attachment)
	for rows.Next() {
		var recordID int64
		var a domain.Attachment
		if err := rows.Scan(&recordID, &a.ID, &a.Name, &a.AlternativeText, &a.Caption,
			&a.URL, &a.Ext, &a.Mime, &a.Size); err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		out[recordID] = append(out[recordID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attachments: %w", err)
	}
	return out, nil
}

// linkAttachments links attachment IDs in order. IDs with no stored
// attachment are skipped.
func linkAttachments(ctx context.Context, tx *sql.Tx, recordID int64, ids []int64) error {
	for pos, attID := range ids {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO record_attachments (record_id, attachment_id, position)
			SELECT ?, id, ? FROM attachments WHERE id = ?
		`, recordID, pos, attID)
		if err != nil {
			return fmt.Errorf("linking attachment %d: %w", attID, err)
		}
	}
	return nil
}

// encodeRecord serialises the business fields and description.
func encodeRecord(rec *domain.Record) (fields, description string, err error) {
	f, err := json.Marshal(rec.Fields())
	if err != nil {
		return "", "", fmt.Errorf("marshalling fields: %w", err)
	}
	blocks := rec.Description
	if blocks == nil {
		blocks = []domain.Block{}
	}
	d, err := json.Marshal(blocks)
	if err != nil {
		return "", "", fmt.Errorf("marshalling description: %w", err)
	}
	return string(f), string(d), nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	var rec domain.Record
	var fields, description string
	var publishedAt sql.NullString
	var createdAt, updatedAt string
	var manualOverride int

	if err := row.Scan(&rec.ID, &rec.DocumentID, &rec.Locale, &fields, &description,
		&publishedAt, &createdAt, &updatedAt, &manualOverride); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(fields), &values); err != nil {
		return nil, fmt.Errorf("unmarshalling fields: %w", err)
	}
	for name, value := range values {
		rec.SetField(name, value)
	}
	if err := json.Unmarshal([]byte(description), &rec.Description); err != nil {
		return nil, fmt.Errorf("unmarshalling description: %w", err)
	}
	if len(rec.Description) == 0 {
		rec.Description = nil
	}

	if publishedAt.Valid {
		t := parseTime(publishedAt.String)
		rec.PublishedAt = &t
	}
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	rec.ManualOverride = manualOverride == 1
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]domain.Record, error) {
	defer rows.Close()

	records := make([]domain.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure, the
// partial index on non-empty sf_number being the one callers can hit.
func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
