package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Origonlabs/Api-Icons/pkg/models"
)

var (
	imageSuffixRe = regexp.MustCompile(`(?i)\.(svg|png|jpe?g|webp|gif)$`)
	sizeTokenRe   = regexp.MustCompile(`_(\d+)_`)
	styleTokenRe  = regexp.MustCompile(`(?i)_(regular|filled|light|bold|outline)$`)
)

// ParseFilename extracts size and style facets from an asset filename.
// It never fails: an unmatched facet is simply left empty.
//
//	ParseFilename("icon_name_24_regular.svg")
//	// => {Size: 24, Style: "regular", BaseName: "icon_name_24_regular"}
func ParseFilename(file string) models.FileFacets {
	stem := imageSuffixRe.ReplaceAllString(file, "")
	facets := models.FileFacets{BaseName: stem}

	if m := sizeTokenRe.FindStringSubmatch(stem); m != nil {
		// Atoi rejects overflowing runs; zero is not a dimension
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			facets.Size = &n
		}
	}

	if m := styleTokenRe.FindStringSubmatch(stem); m != nil {
		facets.Style = strings.ToLower(m[1])
	}

	return facets
}

// hasSuffixFold reports whether name ends with ext, ignoring case.
func hasSuffixFold(name, ext string) bool {
	if len(name) < len(ext) {
		return false
	}
	return strings.EqualFold(name[len(name)-len(ext):], ext)
}
