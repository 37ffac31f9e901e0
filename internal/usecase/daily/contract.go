package daily

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
}

// PackageStore writes the dated delivery folder.
type PackageStore interface {
	DayDir(dateStr string) (string, error)
	CategoryDir(dayDir string, cat taxonomy.Category) (string, error)
	CopyTake(srcPath, dstDir, name string) error
	WriteReport(dayDir, content string) (string, error)
	Rel(path string) string
}
