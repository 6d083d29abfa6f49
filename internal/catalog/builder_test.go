package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Origonlabs/Api-Icons/pkg/models"
)

const svg = `<svg xmlns="http://www.w3.org/2000/svg"/>`

func TestBuildAccessTime(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Access Time", "metadata.json"),
		`{"name":"Access Time","keyword":"fluent-icon","metaphor":["number","24","Circle"]}`)
	writeFile(t, filepath.Join(root, "Access Time", "SVG", "access_time_20_filled.svg"), svg)

	records, stats, err := NewBuilder(Config{AssetsDir: root}).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "access-time-access_time_20_filled", r.ID)
	assert.Equal(t, "Access Time", r.Category)
	assert.Equal(t, "access-time", r.CategorySlug)
	assert.Equal(t, "Access Time", r.Name)
	assert.Equal(t, "fluent-icon", r.Keyword)
	require.NotNil(t, r.Size)
	assert.Equal(t, 20, *r.Size)
	assert.Equal(t, "filled", r.Style)
	assert.Equal(t, []string{"number", "24", "Circle"}, r.Tags)
	assert.Equal(t, "access_time_20_filled.svg", r.File)
	assert.Equal(t, "assets/Access Time/SVG/access_time_20_filled.svg", r.RelativePath)
	assert.Nil(t, r.CDNURL)

	assert.Equal(t, Stats{Categories: 1, Files: 1}, stats)
}

func TestBuildCDNURLEncodesSegments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Arrow & Up", "SVG", "arrow up#1_16_regular.svg"), svg)

	records, _, err := NewBuilder(Config{
		AssetsDir:  root,
		CDNBaseURL: "https://cdn.example.com/icons//",
	}).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].CDNURL)
	assert.Equal(t, "https://cdn.example.com/icons/Arrow%20&%20Up/arrow%20up%231_16_regular.svg", *records[0].CDNURL)
}

func TestBuildSkipsAndDefaults(t *testing.T) {
	root := t.TempDir()
	// no SVG folder: contributes nothing
	writeFile(t, filepath.Join(root, "Empty", "metadata.json"), `{"name":"Empty"}`)
	// SVG is a file, not a folder
	writeFile(t, filepath.Join(root, "Broken", "SVG"), "not a dir")
	// no descriptor: name falls back to the directory name
	writeFile(t, filepath.Join(root, "Bare Folder", "SVG", "b_12_light.svg"), svg)
	writeFile(t, filepath.Join(root, "Bare Folder", "SVG", "notes.txt"), "x")
	writeFile(t, filepath.Join(root, "Bare Folder", "SVG", "preview.png"), "x")
	writeFile(t, filepath.Join(root, "Bare Folder", "SVG", "UPPER_20_REGULAR.SVG"), svg)
	// malformed descriptor degrades to defaults
	writeFile(t, filepath.Join(root, "Malformed", "metadata.json"), `{"name":`)
	writeFile(t, filepath.Join(root, "Malformed", "SVG", "m.svg"), svg)
	// top-level files are ignored
	writeFile(t, filepath.Join(root, "README.md"), "# icons")

	records, stats, err := NewBuilder(Config{AssetsDir: root}).Build(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{
		"bare-folder-UPPER_20_REGULAR",
		"bare-folder-b_12_light",
		"malformed-m",
	}, ids)

	assert.Equal(t, "Bare Folder", records[0].Name)
	assert.Equal(t, "regular", records[0].Style)
	assert.Equal(t, []string{}, records[0].Tags)
	assert.Equal(t, "Malformed", records[2].Name)
	assert.Nil(t, records[2].Size)
	assert.Empty(t, records[2].Style)

	assert.Equal(t, Stats{
		Categories:         4,
		SkippedCategories:  2,
		MissingDescriptors: 2,
		Files:              3,
		IgnoredFiles:       2,
	}, stats)
}

func TestBuildMissingRootIsFatal(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, _, err := NewBuilder(Config{AssetsDir: missing}).Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAssetsRoot))
	assert.Contains(t, err.Error(), missing)
}

func TestBuildEmptyRoot(t *testing.T) {
	records, stats, err := NewBuilder(Config{AssetsDir: t.TempDir()}).Build(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Zero(t, stats)
}

func TestBuildSlugCollisions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Arrow Left", "SVG", "arrow_16_regular.svg"), svg)
	writeFile(t, filepath.Join(root, "Arrow Left", "SVG", "arrow_20_regular.svg"), svg)
	writeFile(t, filepath.Join(root, "arrow-left", "SVG", "arrow_16_regular.svg"), svg)
	writeFile(t, filepath.Join(root, "arrow-left", "SVG", "arrow_24_regular.svg"), svg)

	records, stats, err := NewBuilder(Config{AssetsDir: root}).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 4)

	ids := map[string]models.IconRecord{}
	for _, r := range records {
		ids[r.ID] = r
	}
	assert.Len(t, ids, 4)
	assert.Equal(t, "Arrow Left", ids["arrow-left-arrow_16_regular"].Category)
	assert.Equal(t, "arrow-left", ids["arrow-left-arrow_16_regular-2"].Category)
	assert.Contains(t, ids, "arrow-left-arrow_24_regular")
	assert.Equal(t, 1, stats.Collisions)
}

func TestBuildIsStableAcrossRunsAndWorkers(t *testing.T) {
	root := t.TempDir()
	for _, cat := range []string{"Zeta", "alpha", "Mu", "beta"} {
		writeFile(t, filepath.Join(root, cat, "metadata.json"), `{"metaphor":["m"]}`)
		for _, f := range []string{"c_20_bold.svg", "a_16_regular.svg", "b.svg"} {
			writeFile(t, filepath.Join(root, cat, "SVG", f), svg)
		}
	}

	first, _, err := NewBuilder(Config{AssetsDir: root}).Build(context.Background())
	require.NoError(t, err)
	again, _, err := NewBuilder(Config{AssetsDir: root}).Build(context.Background())
	require.NoError(t, err)
	parallel, _, err := NewBuilder(Config{AssetsDir: root, Workers: 4}).Build(context.Background())
	require.NoError(t, err)

	assert.Len(t, first, 12)
	assert.Equal(t, first, again)
	assert.Equal(t, first, parallel)
	assert.Equal(t, "Mu", first[0].Category)
}

func TestBuildCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A", "SVG", "a.svg"), svg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewBuilder(Config{AssetsDir: root}).Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIconIDCollapsesDashes(t *testing.T) {
	assert.Equal(t, "a-b-c", iconID("a", "-b--c"))
	assert.Equal(t, "stem-x", iconID("", "stem--x"))
}
