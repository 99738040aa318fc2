// Package catalog serves the reel template presets from a TOML document.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"reelsmaker/internal/domain"
)

//go:embed templates.toml
var defaultCatalog []byte

type document struct {
	Templates []domain.Template `toml:"templates"`
}

// Catalog is an immutable, ordered set of templates.
type Catalog struct {
	templates []domain.Template
	byID      map[string]int
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or returns the default catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a TOML catalog and validates every template.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	c := &Catalog{byID: make(map[string]int, len(doc.Templates))}
	for _, tpl := range doc.Templates {
		tpl.ID = strings.TrimSpace(tpl.ID)
		if tpl.ID == "" {
			return nil, errors.New("catalog: template id is required")
		}
		if _, dup := c.byID[tpl.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate template %q", tpl.ID)
		}
		if tpl.WatermarkPosition == "" {
			tpl.WatermarkPosition = domain.WatermarkBottomRight
		}
		if !tpl.WatermarkPosition.Valid() {
			return nil, fmt.Errorf("catalog: template %q: invalid watermark position %q", tpl.ID, tpl.WatermarkPosition)
		}
		if tpl.BeatTiming <= 0 {
			tpl.BeatTiming = domain.DefaultBeatTiming
		}
		c.byID[tpl.ID] = len(c.templates)
		c.templates = append(c.templates, tpl)
	}
	return c, nil
}

// Get returns the template with the given id.
func (c *Catalog) Get(id string) (domain.Template, bool) {
	if c == nil {
		return domain.Template{}, false
	}
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return domain.Template{}, false
	}
	return c.templates[idx], true
}

// List returns every template in catalog order.
func (c *Catalog) List() []domain.Template {
	if c == nil {
		return nil
	}
	out := make([]domain.Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Trending returns up to limit trending templates ordered by trend score,
// highest first. A non-positive limit returns all of them.
func (c *Catalog) Trending(limit int) []domain.Template {
	if c == nil {
		return nil
	}
	var out []domain.Template
	for _, tpl := range c.templates {
		if tpl.Trending {
			out = append(out, tpl)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TrendScore > out[j].TrendScore
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

var _ domain.TemplateRepository = (*Catalog)(nil)
