// Package banner holds the advertising banner catalog shown to the user.
package banner

import (
	"fmt"

	"github.com/google/uuid"
)

// Banner is a single advertising slot.
type Banner struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Catalog is the fixed set of banners rendered for a page session. IDs are
// generated at startup; claim state is tracked separately so rendering stays
// a pure function of tracker state.
type Catalog struct {
	banners []Banner
	byID    map[string]Banner
}

// NewCatalog creates a catalog of count banners.
func NewCatalog(count int) *Catalog {
	c := &Catalog{byID: make(map[string]Banner, count)}
	for i := 0; i < count; i++ {
		b := Banner{
			ID:    uuid.NewString(),
			Label: fmt.Sprintf("Sponsored banner #%d", i+1),
		}
		c.banners = append(c.banners, b)
		c.byID[b.ID] = b
	}
	return c
}

// List returns the banners in render order.
func (c *Catalog) List() []Banner {
	out := make([]Banner, len(c.banners))
	copy(out, c.banners)
	return out
}

// Has reports whether id belongs to the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}
