package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Origonlabs/Api-Icons/pkg/database"
	"github.com/Origonlabs/Api-Icons/pkg/utils"
)

func main() {
	utils.LoadDotEnv()

	iconsOut := flag.String("out", "data/icons.csv", "output CSV path")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	n, err := exportIcons(ctx, db, *iconsOut)
	if err != nil {
		log.Fatalf("export icons failed: %v", err)
	}

	log.Printf("✅ exported %d icons to %s", n, *iconsOut)
}

func exportIcons(ctx context.Context, db *sql.DB, outPath string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "category", "category_slug", "name", "keyword", "tags", "size", "style", "file", "relative_path", "cdn_url"}); err != nil {
		return 0, err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id, category, category_slug, name, keyword, tags, size, style, file, relative_path, cdn_url
        FROM icons
        ORDER BY position
    `)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var (
			id, category, slug, name string
			keyword                  sql.NullString
			tags                     string
			size                     sql.NullInt64
			style                    sql.NullString
			file, relPath            string
			cdnURL                   sql.NullString
		)

		if err := rows.Scan(&id, &category, &slug, &name, &keyword, &tags, &size, &style, &file, &relPath, &cdnURL); err != nil {
			return n, err
		}

		sz := ""
		if size.Valid {
			sz = strconv.FormatInt(size.Int64, 10)
		}

		if err := w.Write([]string{
			id,
			category,
			slug,
			name,
			keyword.String,
			tags,
			sz,
			style.String,
			file,
			relPath,
			cdnURL.String,
		}); err != nil {
			return n, err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, err
	}

	w.Flush()
	return n, w.Error()
}
