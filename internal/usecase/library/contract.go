package library

import (
	"context"

	"github.com/recitevault/recitevault/internal/domain/taxonomy"
)

// TaxonomyLoader supplies the current classification taxonomy.
type TaxonomyLoader interface {
	Load(ctx context.Context) (*taxonomy.Store, error)
}

// TakeStore resolves item folders and lists the takes archived in them.
type TakeStore interface {
	FindItemDir(cat taxonomy.Category, index int, meta taxonomy.ItemMeta) (string, bool)
	Takes(dir string) []string
	Rel(path string) string
}
