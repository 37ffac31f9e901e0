package intake

import (
	"context"
	"io"

	"github.com/recitevault/recitevault/internal/domain/record"
	"github.com/recitevault/recitevault/internal/domain/tag"
	"github.com/recitevault/recitevault/internal/domain/taxonomy"
	"github.com/recitevault/recitevault/internal/usecase/scope"
)

// TaxonomyLoader supplies the current classification taxonomy.
type TaxonomyLoader interface {
	Load(ctx context.Context) (*taxonomy.Store, error)
}

// RecordLog persists processed-file records.
type RecordLog interface {
	List(ctx context.Context) ([]record.Record, error)
	Append(ctx context.Context, rec record.Record) error
	Update(ctx context.Context, id string, mutate func(*record.Record) error) (record.Record, error)
}

// FileStore holds raw uploads awaiting processing.
type FileStore interface {
	SaveUpload(name string, r io.Reader) (string, error)
	ListAudio() ([]string, error)
	Rel(path string) string
	Abs(stored string) string
}

// Archiver files a confirmed take under its library item folder.
type Archiver interface {
	ArchiveTake(srcPath string, cat taxonomy.Category, index int, meta taxonomy.ItemMeta) (string, error)
}

// Transcription runs the scope-aware transcription pipeline.
type Transcription interface {
	Run(ctx context.Context, audioPath string, mode scope.Mode, windowSec int) (scope.Outcome, error)
}

// Classifier infers a tag from transcript text.
type Classifier interface {
	Classify(text string, store *taxonomy.Store) tag.Result
}
