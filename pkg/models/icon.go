package models

import "time"

// CategoryDescriptor is the optional sidecar metadata of a category folder.
// A missing or unreadable descriptor is represented by the zero value.
type CategoryDescriptor struct {
	Name        string   `json:"name,omitempty" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Keyword     string   `json:"keyword,omitempty" yaml:"keyword"`
	Metaphor    []string `json:"metaphor,omitempty" yaml:"metaphor"`
}

// FileFacets holds the metadata embedded in an asset filename.
// BaseName is the full stem; facets are annotations, not a rewrite of it.
type FileFacets struct {
	Size     *int   `json:"size,omitempty"`
	Style    string `json:"style,omitempty"`
	BaseName string `json:"baseName"`
}

// IconRecord is one row of the manifest, describing one discovered asset.
type IconRecord struct {
	ID           string   `json:"id"`
	Category     string   `json:"category"`     // raw directory name
	CategorySlug string   `json:"categorySlug"` // normalized category
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Keyword      string   `json:"keyword,omitempty"`
	Tags         []string `json:"tags"`
	Size         *int     `json:"size,omitempty"`
	Style        string   `json:"style,omitempty"`
	File         string   `json:"file"`
	RelativePath string   `json:"relativePath"`
	CDNURL       *string  `json:"cdnUrl"` // null => use RelativePath
}

// Manifest is the single artifact exchanged with the UI and the seeding step.
type Manifest struct {
	GeneratedAt time.Time    `json:"generatedAt"`
	Count       int          `json:"count"`
	Icons       []IconRecord `json:"icons"`
}
