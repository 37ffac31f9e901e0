// Package scope decides how much of a recording to transcribe: the whole
// file, only a head window, or both (hybrid), with graceful fallback
// when clip extraction is unavailable.
package scope

import (
	"context"
	"math"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/recitevault/recitevault/internal/domain/transcript"
)

// stubEngineName matches the no-op engine; clip extraction is skipped
// for it because there is no audio understanding to speed up.
const stubEngineName = "stub"

// Mode selects the transcription strategy.
type Mode string

const (
	// Full transcribes the whole file once.
	Full Mode = "full"
	// Head transcribes only a leading clip, falling back to Full when
	// clipping fails.
	Head Mode = "head"
	// Hybrid transcribes the whole file and additionally a leading clip
	// to produce a cheaper tag-text candidate.
	Hybrid Mode = "hybrid"
)

// NormalizeMode maps unrecognized scope values to Full.
func NormalizeMode(raw string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case Head:
		return Head
	case Hybrid:
		return Hybrid
	default:
		return Full
	}
}

// Diagnostics records which path ran and how long each stage took.
type Diagnostics struct {
	Scope          string             `json:"scope"`
	UsedHeadClip   bool               `json:"used_head_clip"`
	FallbackToFull bool               `json:"fallback_to_full"`
	TimingMS       map[string]float64 `json:"timing_ms"`
}

// Outcome is the orchestrator result: the authoritative transcript plus
// the short text candidate used for classification.
type Outcome struct {
	Transcript  transcript.Result
	TagText     string
	Diagnostics Diagnostics
}

// Service orchestrates transcription scope.
type Service struct {
	engine  Transcriber
	clipper ClipExtractor
	logger  *zap.Logger
}

// New creates a scope orchestrator. clipper may be nil when no clipping
// tool is available.
func New(engine Transcriber, clipper ClipExtractor, logger *zap.Logger) *Service {
	return &Service{engine: engine, clipper: clipper, logger: logger}
}

// Run transcribes audioPath under the given mode. Engine failures
// propagate to the caller; only clip extraction degrades gracefully.
func (s *Service) Run(ctx context.Context, audioPath string, mode Mode, windowSec int) (Outcome, error) {
	start := time.Now()
	timing := map[string]float64{}
	diag := Diagnostics{Scope: string(mode), TimingMS: timing}

	clipEligible := s.clipper != nil && s.engine.Name() != stubEngineName

	if mode == Hybrid {
		tFull := time.Now()
		full, err := s.engine.Transcribe(ctx, audioPath)
		if err != nil {
			return Outcome{}, err
		}
		timing["asr_full"] = elapsedMS(tFull)
		tagText := transcript.HeadWindowText(full, windowSec)

		if clipEligible {
			tClip := time.Now()
			clipPath, ok := s.clipper.ExtractHead(ctx, audioPath, windowSec)
			timing["head_clip"] = elapsedMS(tClip)
			diag.UsedHeadClip = ok
			if ok {
				headText, err := s.transcribeClip(ctx, clipPath, timing, "asr_head")
				if err != nil {
					return Outcome{}, err
				}
				if headText != "" {
					tagText = headText
				}
			}
		} else {
			timing["head_clip"] = 0
		}

		timing["total"] = elapsedMS(start)
		return Outcome{Transcript: full, TagText: tagText, Diagnostics: diag}, nil
	}

	if mode == Head {
		if clipEligible {
			tClip := time.Now()
			clipPath, ok := s.clipper.ExtractHead(ctx, audioPath, windowSec)
			timing["head_clip"] = elapsedMS(tClip)
			diag.UsedHeadClip = ok
			if ok {
				tASR := time.Now()
				head, err := s.transcribeClipResult(ctx, clipPath)
				if err != nil {
					return Outcome{}, err
				}
				timing["asr"] = elapsedMS(tASR)
				timing["total"] = elapsedMS(start)
				return Outcome{
					Transcript:  head,
					TagText:     strings.TrimSpace(head.Text),
					Diagnostics: diag,
				}, nil
			}
		}
		if _, ok := timing["head_clip"]; !ok {
			timing["head_clip"] = 0
		}
		diag.FallbackToFull = true
	}

	tASR := time.Now()
	full, err := s.engine.Transcribe(ctx, audioPath)
	if err != nil {
		return Outcome{}, err
	}
	timing["asr"] = elapsedMS(tASR)
	timing["total"] = elapsedMS(start)
	return Outcome{
		Transcript:  full,
		TagText:     transcript.HeadWindowText(full, windowSec),
		Diagnostics: diag,
	}, nil
}

// transcribeClip transcribes a temporary clip and returns its trimmed
// text, removing the clip on every path.
func (s *Service) transcribeClip(ctx context.Context, clipPath string, timing map[string]float64, stage string) (string, error) {
	tASR := time.Now()
	head, err := s.transcribeClipResult(ctx, clipPath)
	if err != nil {
		return "", err
	}
	timing[stage] = elapsedMS(tASR)
	return strings.TrimSpace(head.Text), nil
}

func (s *Service) transcribeClipResult(ctx context.Context, clipPath string) (transcript.Result, error) {
	defer func() {
		if err := os.Remove(clipPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove head clip", zap.String("path", clipPath), zap.Error(err))
		}
	}()
	return s.engine.Transcribe(ctx, clipPath)
}

func elapsedMS(since time.Time) float64 {
	return math.Round(float64(time.Since(since).Microseconds())/10) / 100
}
