// Package chi exposes the recitevault HTTP API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/recitevault/recitevault/internal/domain"
	"github.com/recitevault/recitevault/internal/domain/needs"
	"github.com/recitevault/recitevault/internal/domain/taxonomy"
	commanduc "github.com/recitevault/recitevault/internal/usecase/command"
	dailyuc "github.com/recitevault/recitevault/internal/usecase/daily"
	intakeuc "github.com/recitevault/recitevault/internal/usecase/intake"
	libraryuc "github.com/recitevault/recitevault/internal/usecase/library"
	"github.com/recitevault/recitevault/internal/usecase/scope"
)

// Error codes returned in the JSON error envelope.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeRecordNotFound   = "record_not_found"
	codeEngineFailure    = "engine_failure"
	codeInternalError    = "internal_error"
)

const maxUploadBytes = 256 << 20

// MappingsStore reads and replaces the raw taxonomy document.
type MappingsStore interface {
	RawDocument(ctx context.Context) ([]byte, error)
	ReplaceDocument(ctx context.Context, data []byte) error
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the usecases to HTTP handlers.
type Server struct {
	intake        *intakeuc.Service
	library       *libraryuc.Service
	command       *commanduc.Service
	daily         *dailyuc.Service
	mappings      MappingsStore
	engineName    string
	scopeMode     string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	intake *intakeuc.Service,
	library *libraryuc.Service,
	command *commanduc.Service,
	daily *dailyuc.Service,
	mappings MappingsStore,
	engineName string,
	scopeMode string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		intake:     intake,
		library:    library,
		command:    command,
		daily:      daily,
		mappings:   mappings,
		engineName: engineName,
		scopeMode:  scopeMode,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrRecordNotFound, http.StatusNotFound, codeRecordNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidCategory, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidIndex, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEngineFailure, http.StatusBadGateway, codeEngineFailure),
	}
	return s
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"time":       time.Now().UTC().Format(time.RFC3339),
		"asr_engine": s.engineName,
		"asr_scope":  s.scopeMode,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// InboxUpload handles POST /api/inbox/upload (multipart, field "files").
func (s *Server) InboxUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	saved := make([]intakeuc.UploadInfo, 0, 4)
	for _, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			if fh.Filename == "" {
				continue
			}
			f, err := fh.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, codeBadRequest, "Cannot read upload: "+err.Error())
				return
			}
			info, err := s.intake.Upload(r.Context(), fh.Filename, f)
			f.Close()
			if err != nil {
				s.handleDomainError(w, err)
				return
			}
			saved = append(saved, info)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": saved})
}

// InboxScan handles POST /api/inbox/scan.
func (s *Server) InboxScan(w http.ResponseWriter, r *http.Request) {
	res, err := s.intake.ScanInbox(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// InboxItems handles GET /api/inbox/items.
func (s *Server) InboxItems(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be a positive integer")
			return
		}
		limit = v
	}
	records, err := s.intake.ListRecent(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// AudioProcess handles POST /api/audio/process.
func (s *Server) AudioProcess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "path is required")
		return
	}
	rec, err := s.intake.ProcessAudioFile(r.Context(), req.Path)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// AudioRelabel handles POST /api/audio/relabel.
func (s *Server) AudioRelabel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID      string `json:"id"`
		Type    string `json:"type"`
		Index   int    `json:"index"`
		TitleZH string `json:"title_zh"`
		TitleEN string `json:"title_en"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "id is required")
		return
	}
	if req.Index < 1 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "index must be at least 1")
		return
	}
	rec, err := s.intake.Relabel(r.Context(), req.ID, req.Type, req.Index, req.TitleZH, req.TitleEN)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":           true,
		"library_path": rec.LibraryPath,
		"record":       rec,
	})
}

// ASRTest handles POST /api/asr/test (multipart, field "file", query
// scope and tag_window_sec).
func (s *Server) ASRTest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "file is required")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Missing filename")
		return
	}

	mode := scope.NormalizeMode(r.URL.Query().Get("scope"))
	windowSec := 0
	if raw := r.URL.Query().Get("tag_window_sec"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "tag_window_sec must be at least 1")
			return
		}
		windowSec = v
	}

	res, err := s.intake.TestTranscription(r.Context(), header.Filename, file, mode, windowSec)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// LibrarySummary handles GET /api/library/summary.
func (s *Server) LibrarySummary(w http.ResponseWriter, r *http.Request) {
	rows, err := s.library.Summary(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// LibraryTakes handles GET /api/library/takes?type=...&index=N.
func (s *Server) LibraryTakes(w http.ResponseWriter, r *http.Request) {
	rawType := r.URL.Query().Get("type")
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil || index < 1 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "index must be a positive integer")
		return
	}
	takes, err := s.library.Takes(r.Context(), rawType, index)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, takes)
}

// TeacherParse handles POST /api/teacher/parse.
func (s *Server) TeacherParse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	parsed, err := s.command.Parse(r.Context(), req.Text)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":  time.Now().Format("2006-01-02"),
		"needs": parsed,
	})
}

// DailyBuild handles POST /api/daily/build.
func (s *Server) DailyBuild(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date       string           `json:"date"`
		TeacherCmd string           `json:"teacher_cmd"`
		Needs      map[string][]int `json:"needs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	requested := needs.Set{}
	for rawType, indexes := range req.Needs {
		cat, err := taxonomy.Parse(rawType)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		for _, idx := range indexes {
			requested.Add(cat, idx)
		}
	}
	res, err := s.daily.BuildPackage(r.Context(), req.Date, req.TeacherCmd, requested)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// MappingsGet handles GET /api/config/mappings.
func (s *Server) MappingsGet(w http.ResponseWriter, r *http.Request) {
	data, err := s.mappings.RawDocument(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// MappingsPut handles PUT /api/config/mappings.
func (s *Server) MappingsPut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Payload) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "payload is required")
		return
	}
	if err := s.mappings.ReplaceDocument(r.Context(), req.Payload); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var ie *domain.IndexError
	if errors.As(err, &ie) {
		return ie.Error()
	}
	sentinels := []error{
		domain.ErrRecordNotFound,
		domain.ErrNotFound,
		domain.ErrInvalidCategory,
		domain.ErrInvalidIndex,
		domain.ErrInvalidDocument,
		domain.ErrEngineFailure,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
