package scope

import (
	"context"

	"github.com/recitevault/recitevault/internal/domain/transcript"
)

// Transcriber is the abstract transcription engine. Implementations must
// fail loudly when misconfigured rather than returning empty text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audioPath string) (transcript.Result, error)
}

// ClipExtractor extracts a bounded leading clip of an audio file into a
// temporary file. ok=false on any failure; clipping is best-effort.
// The caller owns the returned file.
type ClipExtractor interface {
	ExtractHead(ctx context.Context, audioPath string, windowSec int) (path string, ok bool)
}
