// Package catalog holds the fixed syllabus of requirements. It is loaded once
// and never mutated.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"reqtrack/internal/model"
)

//go:embed catalog.json
var defaultCatalogJSON []byte

type Catalog struct {
	reqs []model.Requirement
	pos  map[int]int
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. The embedded file is part of the build,
// so a parse failure is a programming error.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultCatalogJSON)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded catalog.json: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

func Parse(b []byte) (*Catalog, error) {
	var reqs []model.Requirement
	if err := json.Unmarshal(b, &reqs); err != nil {
		return nil, err
	}
	return New(reqs)
}

// New builds a catalog sorted by Order (ties broken by id).
func New(reqs []model.Requirement) (*Catalog, error) {
	cp := append([]model.Requirement{}, reqs...)
	sort.SliceStable(cp, func(i, j int) bool {
		if cp[i].Order != cp[j].Order {
			return cp[i].Order < cp[j].Order
		}
		return cp[i].ID < cp[j].ID
	})
	pos := make(map[int]int, len(cp))
	for i, r := range cp {
		if _, dup := pos[r.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate requirement id %d", r.ID)
		}
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("catalog: requirement %d has no name", r.ID)
		}
		if r.Category != "" && !r.Category.Valid() {
			return nil, fmt.Errorf("catalog: requirement %d has invalid category %q", r.ID, r.Category)
		}
		pos[r.ID] = i
	}
	return &Catalog{reqs: cp, pos: pos}, nil
}

func (c *Catalog) All() []model.Requirement {
	return append([]model.Requirement{}, c.reqs...)
}

func (c *Catalog) Len() int { return len(c.reqs) }

func (c *Catalog) Get(id int) (model.Requirement, bool) {
	i, ok := c.pos[id]
	if !ok {
		return model.Requirement{}, false
	}
	return c.reqs[i], true
}

func (c *Catalog) Has(id int) bool {
	_, ok := c.pos[id]
	return ok
}

// IDs returns requirement ids in catalog order.
func (c *Catalog) IDs() []int {
	out := make([]int, len(c.reqs))
	for i, r := range c.reqs {
		out[i] = r.ID
	}
	return out
}

// Position is the index of id in catalog order, or -1.
func (c *Catalog) Position(id int) int {
	if i, ok := c.pos[id]; ok {
		return i
	}
	return -1
}
