// Package intake drives the ingestion pipeline: transcribe an inbox
// recording, classify it, archive confident results, and log everything
// to the record log.
package intake

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recitevault/recitevault/internal/domain"
	"github.com/recitevault/recitevault/internal/domain/record"
	"github.com/recitevault/recitevault/internal/domain/tag"
	"github.com/recitevault/recitevault/internal/domain/taxonomy"
	"github.com/recitevault/recitevault/internal/domain/transcript"
	"github.com/recitevault/recitevault/internal/metrics"
	"github.com/recitevault/recitevault/internal/usecase/scope"
)

const defaultListLimit = 200

var unsafeNameChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// Options tune the pipeline per deployment.
type Options struct {
	ScopeMode       scope.Mode
	TagWindowSec    int
	ReviewThreshold float64
}

// ScanResult counts one inbox sweep.
type ScanResult struct {
	Queued    int `json:"queued"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// UploadInfo describes one stored upload.
type UploadInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Service runs the intake pipeline.
type Service struct {
	taxonomies    TaxonomyLoader
	records       RecordLog
	files         FileStore
	archive       Archiver
	transcription Transcription
	classifier    Classifier
	opts          Options
	logger        *zap.Logger
}

// New creates an intake service.
func New(
	taxonomies TaxonomyLoader,
	records RecordLog,
	files FileStore,
	archive Archiver,
	transcription Transcription,
	classifier Classifier,
	opts Options,
	logger *zap.Logger,
) *Service {
	if opts.ReviewThreshold <= 0 {
		opts.ReviewThreshold = 0.75
	}
	return &Service{
		taxonomies:    taxonomies,
		records:       records,
		files:         files,
		archive:       archive,
		transcription: transcription,
		classifier:    classifier,
		opts:          opts,
		logger:        logger,
	}
}

// Upload stores one uploaded audio file in the Inbox.
func (s *Service) Upload(ctx context.Context, name string, r io.Reader) (UploadInfo, error) {
	path, err := s.files.SaveUpload(name, r)
	if err != nil {
		return UploadInfo{}, err
	}
	s.logger.Info("upload stored", zap.String("name", name))
	return UploadInfo{Name: filepath.Base(path), Path: s.files.Rel(path)}, nil
}

// ProcessAudioFile runs the full pipeline on one file and appends the
// resulting record. Low-confidence results are kept in the Inbox for
// manual review instead of being archived.
func (s *Service) ProcessAudioFile(ctx context.Context, pathValue string) (record.Record, error) {
	store, err := s.taxonomies.Load(ctx)
	if err != nil {
		return record.Record{}, err
	}

	src := pathValue
	if !filepath.IsAbs(src) {
		src = s.files.Abs(pathValue)
	}
	if _, err := os.Stat(src); err != nil {
		return record.Record{}, fmt.Errorf("%w: %s", domain.ErrNotFound, src)
	}

	outcome, err := s.transcription.Run(ctx, src, s.opts.ScopeMode, s.opts.TagWindowSec)
	if err != nil {
		return record.Record{}, err
	}

	tagText := outcome.TagText
	if tagText == "" {
		tagText = outcome.Transcript.Text
	}
	if tagText == "" {
		tagText = fileStem(src)
	}
	result := s.classifier.Classify(tagText, store)
	needsReview := result.Confidence < s.opts.ReviewThreshold

	libraryPath := ""
	if !needsReview {
		meta := taxonomy.ItemMeta{TitleZH: result.TitleZH, TitleEN: result.TitleEN}
		libraryPath, err = s.archive.ArchiveTake(src, result.Category, result.Index, meta)
		if err != nil {
			return record.Record{}, err
		}
	}

	now := record.NowISO(time.Now())
	rec := record.Record{
		ID:          uuid.NewString(),
		CreatedAt:   now,
		UpdatedAt:   now,
		SrcPath:     s.files.Rel(src),
		DurationSec: outcome.Transcript.DurationSec,
		ASR: record.ASR{
			Engine:        outcome.Transcript.Engine,
			Text:          outcome.Transcript.Text,
			Lang:          outcome.Transcript.Lang,
			Segments:      outcome.Transcript.Segments,
			TagWindowText: outcome.TagText,
			Scope:         outcome.Diagnostics.Scope,
			Debug: record.Debug{
				Scope:          outcome.Diagnostics.Scope,
				UsedHeadClip:   outcome.Diagnostics.UsedHeadClip,
				FallbackToFull: outcome.Diagnostics.FallbackToFull,
				TimingMS:       outcome.Diagnostics.TimingMS,
			},
		},
		Tag:         result,
		LibraryPath: libraryPath,
		NeedsReview: needsReview,
	}
	if err := s.records.Append(ctx, rec); err != nil {
		return record.Record{}, err
	}

	metrics.ClassificationsTotal.WithLabelValues(
		string(result.Category), strconv.FormatBool(needsReview),
	).Inc()
	s.logger.Info("audio processed",
		zap.String("src", rec.SrcPath),
		zap.String("engine", rec.ASR.Engine),
		zap.String("scope", rec.ASR.Scope),
		zap.Float64("confidence", result.Confidence),
		zap.String("type", string(result.Category)),
		zap.Int("index", result.Index),
		zap.Bool("needs_review", needsReview),
	)
	return rec, nil
}

// ScanInbox processes every audio file currently in the Inbox. One
// failing file never stops the sweep.
func (s *Service) ScanInbox(ctx context.Context) (ScanResult, error) {
	files, err := s.files.ListAudio()
	if err != nil {
		return ScanResult{}, err
	}
	var res ScanResult
	for _, f := range files {
		res.Queued++
		if _, err := s.ProcessAudioFile(ctx, f); err != nil {
			res.Failed++
			s.logger.Warn("inbox file failed", zap.String("path", f), zap.Error(err))
			continue
		}
		res.Processed++
	}
	return res, nil
}

// TestResult is the transcription dry-run response: the full engine
// output plus what the classifier would make of it.
type TestResult struct {
	Engine         string               `json:"engine"`
	Lang           string               `json:"lang"`
	DurationSec    float64              `json:"duration_sec"`
	Scope          string               `json:"scope"`
	UsedHeadClip   bool                 `json:"used_head_clip"`
	FallbackToFull bool                 `json:"fallback_to_full"`
	TimingMS       map[string]float64   `json:"timing_ms"`
	ASRText        string               `json:"asr_text"`
	TagWindowText  string               `json:"tag_window_text"`
	Segments       []transcript.Segment `json:"segments"`
	TagPreview     tag.Result           `json:"tag_preview"`
}

// TestTranscription transcribes an uploaded file without archiving it
// or writing any record. The file only ever exists in a temp dir.
func (s *Service) TestTranscription(ctx context.Context, name string, r io.Reader, mode scope.Mode, windowSec int) (TestResult, error) {
	if windowSec <= 0 {
		windowSec = s.opts.TagWindowSec
	}
	store, err := s.taxonomies.Load(ctx)
	if err != nil {
		return TestResult{}, err
	}

	tmpDir, err := os.MkdirTemp("", "asr_test_")
	if err != nil {
		return TestResult{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	safe := unsafeNameChars.ReplaceAllString(filepath.Base(name), "_")
	tmpPath := filepath.Join(tmpDir, safe)
	data, err := io.ReadAll(r)
	if err != nil {
		return TestResult{}, fmt.Errorf("read upload: %w", err)
	}
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return TestResult{}, fmt.Errorf("write temp file: %w", err)
	}

	outcome, err := s.transcription.Run(ctx, tmpPath, mode, windowSec)
	if err != nil {
		return TestResult{}, err
	}

	previewText := outcome.TagText
	if previewText == "" {
		previewText = outcome.Transcript.Text
	}
	return TestResult{
		Engine:         outcome.Transcript.Engine,
		Lang:           outcome.Transcript.Lang,
		DurationSec:    outcome.Transcript.DurationSec,
		Scope:          outcome.Diagnostics.Scope,
		UsedHeadClip:   outcome.Diagnostics.UsedHeadClip,
		FallbackToFull: outcome.Diagnostics.FallbackToFull,
		TimingMS:       outcome.Diagnostics.TimingMS,
		ASRText:        outcome.Transcript.Text,
		TagWindowText:  outcome.TagText,
		Segments:       outcome.Transcript.Segments,
		TagPreview:     s.classifier.Classify(previewText, store),
	}, nil
}

// PreviewTag classifies arbitrary text without touching any files.
func (s *Service) PreviewTag(ctx context.Context, text string) (tag.Result, error) {
	store, err := s.taxonomies.Load(ctx)
	if err != nil {
		return tag.Result{}, err
	}
	return s.classifier.Classify(text, store), nil
}

// ListRecent returns the newest records first, capped at limit
// (default 200).
func (s *Service) ListRecent(ctx context.Context, limit int) ([]record.Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt > records[j].CreatedAt
	})
	if len(records) > limit {
		records = records[:limit]
	}
	if records == nil {
		records = []record.Record{}
	}
	return records, nil
}

// Relabel overrides a record's tag with a manual classification and
// re-archives the source audio under the corrected item.
func (s *Service) Relabel(ctx context.Context, id, rawType string, index int, titleZH, titleEN string) (record.Record, error) {
	cat, err := taxonomy.Parse(rawType)
	if err != nil {
		return record.Record{}, err
	}
	store, err := s.taxonomies.Load(ctx)
	if err != nil {
		return record.Record{}, err
	}
	if !store.ValidIndex(cat, index) {
		return record.Record{}, domain.NewIndexError(string(cat), index)
	}

	records, err := s.records.List(ctx)
	if err != nil {
		return record.Record{}, err
	}
	var target *record.Record
	for i := range records {
		if records[i].ID == id {
			target = &records[i]
			break
		}
	}
	if target == nil {
		return record.Record{}, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, id)
	}

	src := target.SrcPath
	if !filepath.IsAbs(src) {
		src = s.files.Abs(src)
	}
	if _, err := os.Stat(src); err != nil {
		return record.Record{}, fmt.Errorf("%w: %s", domain.ErrNotFound, src)
	}

	meta := store.Item(cat, index)
	if titleZH == "" {
		titleZH = meta.TitleZH
	}
	if titleEN == "" {
		titleEN = meta.TitleEN
	}

	libraryPath, err := s.archive.ArchiveTake(src, cat, index, taxonomy.ItemMeta{TitleZH: titleZH, TitleEN: titleEN})
	if err != nil {
		return record.Record{}, err
	}

	updated, err := s.records.Update(ctx, id, func(rec *record.Record) error {
		rec.Tag = tag.Manual(cat, index, titleZH, titleEN)
		rec.LibraryPath = libraryPath
		rec.NeedsReview = false
		rec.UpdatedAt = record.NowISO(time.Now())
		return nil
	})
	if err != nil {
		return record.Record{}, err
	}
	s.logger.Info("record relabeled",
		zap.String("id", id),
		zap.String("type", string(cat)),
		zap.Int("index", index),
	)
	return updated, nil
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
