package icons

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Origonlabs/Api-Icons/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q        string // keyword search in name/file/keyword/tags
	Category string // category slug
	Style    string
	Size     int
	Limit    int
	Offset   int
}

// Category is one row of the category listing.
type Category struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const iconColumns = `id, category, category_slug, name, description, keyword, tags, size, style, file, relative_path, cdn_url`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIcon(s rowScanner) (models.IconRecord, error) {
	var (
		r           models.IconRecord
		description sql.NullString
		keyword     sql.NullString
		tagsJSON    string
		size        sql.NullInt64
		style       sql.NullString
		cdn         sql.NullString
	)
	if err := s.Scan(
		&r.ID, &r.Category, &r.CategorySlug, &r.Name, &description, &keyword,
		&tagsJSON, &size, &style, &r.File, &r.RelativePath, &cdn,
	); err != nil {
		return r, err
	}

	r.Description = description.String
	r.Keyword = keyword.String
	r.Style = style.String
	if size.Valid {
		n := int(size.Int64)
		r.Size = &n
	}
	if cdn.Valid {
		u := cdn.String
		r.CDNURL = &u
	}
	_ = json.Unmarshal([]byte(tagsJSON), &r.Tags)
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return r, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.IconRecord, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+iconColumns+` FROM icons WHERE id = ?`, id)

	rec, err := scanIcon(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return &rec, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var total int
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.IconRecord, error) {
	q.Limit, q.Offset = pageBounds(q.Limit, q.Offset)
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.IconRecord, 0, q.Limit)
	for rows.Next() {
		rec, err := scanIcon(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Categories lists categories in catalog order with their icon counts.
func (r *Repo) Categories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT category_slug, category, name, COUNT(*)
		FROM icons
		GROUP BY category_slug, category, name
		ORDER BY MIN(position)
	`)
	if err != nil {
		return nil, fmt.Errorf("categories query: %w", err)
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Slug, &c.Label, &c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("categories scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// buildListSQL builds either COUNT(*) or SELECT list.
// q matches case-insensitively against name, file, keyword and the stored
// tags JSON text.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `SELECT ` + iconColumns + ` FROM icons`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM icons`
	}

	var where []string
	var args []any

	if kw := strings.ToLower(strings.TrimSpace(q.Q)); kw != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(file) LIKE ? OR LOWER(keyword) LIKE ? OR LOWER(tags) LIKE ?)")
		like := "%" + kw + "%"
		args = append(args, like, like, like, like)
	}

	if c := strings.TrimSpace(q.Category); c != "" {
		where = append(where, "category_slug = ?")
		args = append(args, strings.ToLower(c))
	}

	if s := strings.TrimSpace(q.Style); s != "" {
		where = append(where, "style = ?")
		args = append(args, strings.ToLower(s))
	}

	if q.Size > 0 {
		where = append(where, "size = ?")
		args = append(args, q.Size)
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY position ASC"
		sqlStr += " LIMIT ? OFFSET ?"
		limit, offset := pageBounds(q.Limit, q.Offset)
		args = append(args, limit, offset)
	}

	return sqlStr, args
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
