package refresher

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/josephshahen/nibras-api/internal/models"
	"gopkg.in/yaml.v3"
)

// Template is one canned activity the refresh job can emit. The job is a
// stand-in for a content-discovery pipeline; the catalog is deliberately
// small and fixed.
type Template struct {
	Type        models.ActivityType `yaml:"type"`
	Title       string              `yaml:"title"`
	Description string              `yaml:"description"`
}

// Catalog is the fixed set of activity templates the refresh job picks from
type Catalog struct {
	templates []Template
}

// DefaultCatalog returns the built-in four-entry catalog
func DefaultCatalog() *Catalog {
	return &Catalog{templates: []Template{
		{
			Type:        models.ActivityTypeSearch,
			Title:       "Searched for new content",
			Description: "Scanned recent sources in your chosen category for fresh material.",
		},
		{
			Type:        models.ActivityTypeAnalysis,
			Title:       "Analyzed trending topics",
			Description: "Reviewed what is trending in your interest area right now.",
		},
		{
			Type:        models.ActivityTypeSuggestion,
			Title:       "Prepared a suggestion",
			Description: "Put together a pointer you might want to look at next.",
		},
		{
			Type:        models.ActivityTypeSearch,
			Title:       "Checked followed sources",
			Description: "Went through the sources matching your preferences for updates.",
		},
	}}
}

// LoadCatalog reads a catalog from a YAML file. The file holds a list of
// {type, title, description} entries.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var templates []Template
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no templates", path)
	}

	for i, tmpl := range templates {
		switch tmpl.Type {
		case models.ActivityTypeSearch, models.ActivityTypeAnalysis, models.ActivityTypeSuggestion:
		default:
			return nil, fmt.Errorf("catalog entry %d has invalid type %q", i, tmpl.Type)
		}
	}

	return &Catalog{templates: templates}, nil
}

// Len returns the number of templates in the catalog
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Pick selects one template uniformly at random using the given source
func (c *Catalog) Pick(rng *rand.Rand) Template {
	return c.templates[rng.Intn(len(c.templates))]
}
