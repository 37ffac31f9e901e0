// Package openai implements the transcription engine against an
// OpenAI-compatible audio API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/recitevault/recitevault/internal/domain"
	"github.com/recitevault/recitevault/internal/domain/transcript"
	"github.com/recitevault/recitevault/internal/metrics"
)

// EngineName identifies this engine in transcripts and records.
const EngineName = "openai_api"

// Transcriber calls the hosted transcription API.
type Transcriber struct {
	client   *openai.Client
	model    string
	language string
	hasKey   bool
	logger   *zap.Logger
}

// Config holds the transcription provider settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	Logger   *zap.Logger
}

// NewTranscriber creates an OpenAI-compatible transcription engine.
func NewTranscriber(cfg *Config) *Transcriber {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}

	return &Transcriber{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		language: cfg.Language,
		hasKey:   cfg.APIKey != "",
		logger:   cfg.Logger,
	}
}

// Name implements the engine contract.
func (t *Transcriber) Name() string { return EngineName }

// Transcribe sends the audio file for verbose transcription and maps the
// response onto the domain transcript. Misconfiguration fails loudly so
// the caller never mistakes it for silent audio.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (transcript.Result, error) {
	if !t.hasKey {
		metrics.TranscriptionErrorsTotal.WithLabelValues(EngineName, "misconfigured").Inc()
		return transcript.Result{}, fmt.Errorf("api key not configured: %w", domain.ErrEngineFailure)
	}

	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: t.language,
	}

	start := time.Now()
	resp, err := t.client.CreateTranscription(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.TranscriptionRequestsTotal.WithLabelValues(EngineName, "error").Inc()
		metrics.TranscriptionErrorsTotal.WithLabelValues(EngineName, "api_error").Inc()
		return transcript.Result{}, parseAPIError(err)
	}

	metrics.TranscriptionRequestsTotal.WithLabelValues(EngineName, "success").Inc()
	metrics.TranscriptionDuration.WithLabelValues(EngineName).Observe(duration.Seconds())

	segments := make([]transcript.Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		segments = append(segments, transcript.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}

	lang := strings.TrimSpace(resp.Language)
	if lang == "" {
		lang = t.language
	}
	durationSec := resp.Duration
	if durationSec == 0 {
		durationSec = transcript.DurationFromSegments(segments)
	}

	result := transcript.Result{
		Engine:      EngineName,
		Text:        strings.TrimSpace(resp.Text),
		Lang:        lang,
		Segments:    segments,
		DurationSec: durationSec,
	}

	t.logger.Debug("transcription completed",
		zap.String("model", t.model),
		zap.Float64("audio_sec", result.DurationSec),
		zap.Int("segments", len(segments)),
		zap.Duration("took", duration),
	)
	return result, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (t *Transcriber) HealthCheck(ctx context.Context) error {
	if _, err := t.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrEngineFailure so the pipeline
// treats them as fatal for the invocation.
func parseAPIError(err error) error {
	wrap := domain.ErrEngineFailure

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("transcription API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("transcription API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("transcription API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("transcription request failed: %v: %w", err, wrap)
}

// extractDetail pulls the "detail" field out of a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
