package icons

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Origonlabs/Api-Icons/pkg/models"
)

// SaveManifest replaces the contents of the icons table with m in a single
// transaction. Like the manifest file itself, a seed fully supersedes the
// previous one.
func SaveManifest(ctx context.Context, db *sql.DB, m models.Manifest) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM icons`); err != nil {
		return fmt.Errorf("clear icons: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO icons (id, position, category, category_slug, name, description, keyword,
		                   tags, size, style, file, relative_path, cdn_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for i, r := range m.Icons {
		tagsJSON, err := json.Marshal(r.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags for %s: %w", r.ID, err)
		}
		if r.Tags == nil {
			tagsJSON = []byte("[]")
		}

		var size sql.NullInt64
		if r.Size != nil {
			size = sql.NullInt64{Int64: int64(*r.Size), Valid: true}
		}
		var cdn sql.NullString
		if r.CDNURL != nil {
			cdn = sql.NullString{String: *r.CDNURL, Valid: true}
		}

		if _, err := stmt.ExecContext(
			ctx,
			r.ID,
			i,
			r.Category,
			r.CategorySlug,
			r.Name,
			nullString(r.Description),
			nullString(r.Keyword),
			string(tagsJSON),
			size,
			nullString(r.Style),
			r.File,
			r.RelativePath,
			cdn,
		); err != nil {
			return fmt.Errorf("insert %s: %w", r.ID, err)
		}
	}

	meta := map[string]string{
		"generated_at": m.GeneratedAt.UTC().Format(time.RFC3339),
		"count":        strconv.Itoa(len(m.Icons)),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO catalog_meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, v); err != nil {
			return fmt.Errorf("write meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func nullString(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}
