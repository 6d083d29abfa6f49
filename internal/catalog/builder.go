package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Origonlabs/Api-Icons/pkg/models"
)

const (
	// AssetsSegment prefixes every RelativePath, independent of where the
	// asset root lives on disk.
	AssetsSegment    = "assets"
	DefaultImageDir  = "SVG"
	DefaultExtension = ".svg"
)

// ErrAssetsRoot marks the only fatal condition of a build: the asset root
// cannot be enumerated.
var ErrAssetsRoot = errors.New("assets root unavailable")

// Config is passed explicitly to NewBuilder; the builder never consults the
// environment.
type Config struct {
	AssetsDir  string
	ImageDir   string // subfolder holding the assets of a category
	Extension  string // expected image suffix, matched case-insensitively
	CDNBaseURL string // empty => records carry a null cdnUrl
	Workers    int    // categories processed concurrently; <1 means 1
}

// Stats summarises one build.
type Stats struct {
	Categories         int
	SkippedCategories  int
	MissingDescriptors int
	Files              int
	IgnoredFiles       int
	Collisions         int
}

// Builder walks the category tree and assembles the ordered catalog.
type Builder struct {
	cfg Config
}

// NewBuilder fills defaults and strips trailing slashes from the CDN base.
func NewBuilder(cfg Config) *Builder {
	if cfg.ImageDir == "" {
		cfg.ImageDir = DefaultImageDir
	}
	if cfg.Extension == "" {
		cfg.Extension = DefaultExtension
	}
	if !strings.HasPrefix(cfg.Extension, ".") {
		cfg.Extension = "." + cfg.Extension
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	cfg.CDNBaseURL = strings.TrimRight(strings.TrimSpace(cfg.CDNBaseURL), "/")
	return &Builder{cfg: cfg}
}

type categoryResult struct {
	records           []models.IconRecord
	skipped           bool
	missingDescriptor bool
	ignored           int
}

// Build enumerates the asset root and returns one record per qualifying file,
// in directory order then file order. Per-category problems are logged and
// skipped; only a failure to read the root itself is returned.
func (b *Builder) Build(ctx context.Context) ([]models.IconRecord, Stats, error) {
	var stats Stats

	entries, err := os.ReadDir(b.cfg.AssetsDir)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %s: %v", ErrAssetsRoot, b.cfg.AssetsDir, err)
	}

	categories := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			categories = append(categories, e.Name())
		}
	}

	// categories do not interact, so each worker owns one slot of results
	results := make([]categoryResult, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)
	for i, name := range categories {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = b.buildCategory(name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	var records []models.IconRecord
	seen := make(map[string]struct{})
	for _, res := range results {
		stats.Categories++
		if res.skipped {
			stats.SkippedCategories++
			continue
		}
		if res.missingDescriptor {
			stats.MissingDescriptors++
		}
		stats.IgnoredFiles += res.ignored

		for _, rec := range res.records {
			id, collided := uniqueID(seen, rec.ID)
			if collided {
				log.Printf("[catalog] id collision: %s (%s/%s) renamed to %s", rec.ID, rec.Category, rec.File, id)
				stats.Collisions++
				rec.ID = id
			}
			records = append(records, rec)
		}
	}
	stats.Files = len(records)

	if records == nil {
		records = []models.IconRecord{}
	}
	return records, stats, nil
}

func (b *Builder) buildCategory(category string) categoryResult {
	dir := filepath.Join(b.cfg.AssetsDir, category)
	imgDir := filepath.Join(dir, b.cfg.ImageDir)

	info, err := os.Stat(imgDir)
	if err != nil || !info.IsDir() {
		log.Printf("[catalog] skip %s: no %s folder", category, b.cfg.ImageDir)
		return categoryResult{skipped: true}
	}

	files, err := os.ReadDir(imgDir)
	if err != nil {
		log.Printf("[catalog] skip %s: %v", category, err)
		return categoryResult{skipped: true}
	}

	desc, ok := FindDescriptor(dir)
	res := categoryResult{missingDescriptor: !ok}
	slug := Slugify(category)

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if !hasSuffixFold(f.Name(), b.cfg.Extension) {
			res.ignored++
			continue
		}
		res.records = append(res.records, b.record(category, slug, desc, f.Name()))
	}
	return res
}

func (b *Builder) record(category, slug string, desc models.CategoryDescriptor, file string) models.IconRecord {
	facets := ParseFilename(file)

	name := strings.TrimSpace(desc.Name)
	if name == "" {
		name = category
	}

	tags := make([]string, 0, len(desc.Metaphor))
	tags = append(tags, desc.Metaphor...)

	return models.IconRecord{
		ID:           iconID(slug, facets.BaseName),
		Category:     category,
		CategorySlug: slug,
		Name:         name,
		Description:  desc.Description,
		Keyword:      desc.Keyword,
		Tags:         tags,
		Size:         facets.Size,
		Style:        facets.Style,
		File:         file,
		RelativePath: path.Join(AssetsSegment, category, b.cfg.ImageDir, file),
		CDNURL:       b.cdnURL(category, file),
	}
}

func (b *Builder) cdnURL(category, file string) *string {
	if b.cfg.CDNBaseURL == "" {
		return nil
	}
	u := b.cfg.CDNBaseURL + "/" + url.PathEscape(category) + "/" + url.PathEscape(file)
	return &u
}

// iconID joins slug and stem; a label with no usable characters contributes
// nothing rather than a dangling dash.
func iconID(slug, baseName string) string {
	if slug == "" {
		return collapseDashes(baseName)
	}
	return collapseDashes(slug + "-" + baseName)
}

// uniqueID reserves id, or the first free "-N" variant when id is taken.
func uniqueID(seen map[string]struct{}, id string) (string, bool) {
	if _, dup := seen[id]; !dup {
		seen[id] = struct{}{}
		return id, false
	}
	for n := 2; ; n++ {
		cand := fmt.Sprintf("%s-%d", id, n)
		if _, dup := seen[cand]; !dup {
			seen[cand] = struct{}{}
			return cand, true
		}
	}
}
