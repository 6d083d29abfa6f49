package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Origonlabs/Api-Icons/pkg/models"
)

// DescriptorNames are the sidecar filenames tried, in order, inside a
// category directory.
var DescriptorNames = []string{"metadata.json", "metadata.yaml", "metadata.yml"}

// LoadDescriptor reads a category descriptor. The bool is false when the
// file is missing, unreadable or malformed; the descriptor is then empty.
func LoadDescriptor(path string) (models.CategoryDescriptor, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return models.CategoryDescriptor{}, false
	}

	var d models.CategoryDescriptor
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &d)
	default:
		err = json.Unmarshal(b, &d)
	}
	if err != nil {
		return models.CategoryDescriptor{}, false
	}
	return d, true
}

// FindDescriptor loads the first descriptor present in dir.
func FindDescriptor(dir string) (models.CategoryDescriptor, bool) {
	for _, name := range DescriptorNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadDescriptor(path)
	}
	return models.CategoryDescriptor{}, false
}
