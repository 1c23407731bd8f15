package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/extraction"
	"github.com/jonathan/resume-screener/internal/report"
	"github.com/jonathan/resume-screener/internal/server/middleware"
	"github.com/jonathan/resume-screener/internal/types"
)

// multipartMemory is how much of an upload is buffered in memory before spilling to disk
const multipartMemory = 8 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MatchResponse is returned by POST /match
type MatchResponse struct {
	CandidateID uuid.UUID             `json:"candidate_id"`
	Parsed      *types.ParsedDocument `json:"parsed"`
	Result      *types.MatchResult    `json:"result"`
	Band        types.ScoreBand       `json:"band"`
}

// ScoreRequest is the body of POST /score
type ScoreRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description" validate:"required"`
}

// ScoreResponse is returned by POST /score
type ScoreResponse struct {
	Result *types.MatchResult `json:"result"`
	Band   types.ScoreBand    `json:"band"`
}

// CreateJobRequest is the body of POST /jobs
type CreateJobRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
}

// LoginRequest is the body of POST /auth/token
type LoginRequest struct {
	Subject  string `json:"subject" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by POST /auth/token
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}

// CandidateListResponse is returned by GET /candidates
type CandidateListResponse struct {
	Candidates []db.Candidate `json:"candidates"`
	Count      int            `json:"count"`
}

// JobListResponse is returned by GET /jobs
type JobListResponse struct {
	Jobs  []db.Job `json:"jobs"`
	Count int      `json:"count"`
}

// upload is a resume file read from a multipart request
type upload struct {
	filename string
	format   extraction.Format
	data     []byte
}

// handleParse parses an uploaded resume without storing it
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	doc := s.parser.Parse(r.Context(), up.data, up.format)
	s.jsonResponse(w, http.StatusOK, doc)
}

// handleMatch parses an uploaded resume, scores it against the posted job
// description and stores the candidate
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	jd := strings.TrimSpace(r.FormValue("job_description"))
	if jd == "" {
		s.handleError(w, r, &ErrValidation{Field: "job_description", Message: "required"})
		return
	}
	jobTitle := strings.TrimSpace(r.FormValue("job_title"))

	doc := s.parser.Parse(r.Context(), up.data, up.format)
	result := s.engine.MatchDocument(doc, jd)

	candidate := db.NewCandidate(up.filename, jobTitle, doc, result)
	id, err := s.store.AddCandidate(r.Context(), candidate)
	if err != nil {
		s.handleError(w, r, fmt.Errorf("failed to store candidate: %w", err))
		return
	}

	s.logger.Info("candidate screened",
		zap.String("candidate_id", id.String()),
		zap.String("file", up.filename),
		zap.Float64("score", result.Score),
	)

	s.jsonResponse(w, http.StatusOK, MatchResponse{
		CandidateID: id,
		Parsed:      doc,
		Result:      result,
		Band:        result.Band(),
	})
}

// handleScore scores raw resume text against a job description
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result := s.engine.Match(req.ResumeText, req.JobDescription)
	s.jsonResponse(w, http.StatusOK, ScoreResponse{Result: result, Band: result.Band()})
}

// handleLogin exchanges the configured password for a bearer token
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if !s.passwords.VerifyPassword(req.Password) {
		s.logger.Warn("login rejected", zap.String("subject", req.Subject), zap.String("client", s.extractClientID(r)))
		s.handleError(w, r, &ErrUnauthorized{})
		return
	}

	token, err := s.jwtService.GenerateToken(req.Subject)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.logger.Info("issued token", zap.String("subject", req.Subject))
	s.jsonResponse(w, http.StatusOK, TokenResponse{Token: token, ExpiresIn: int64(s.jwtService.Lifetime().Seconds())})
}

// handleListCandidates lists stored candidates newest first. ?limit=N truncates the list.
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	candidates, err := s.store.ListCandidates(r.Context())
	if err != nil {
		s.handleError(w, r, fmt.Errorf("failed to list candidates: %w", err))
		return
	}
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	s.jsonResponse(w, http.StatusOK, CandidateListResponse{Candidates: candidates, Count: len(candidates)})
}

// handleGetCandidate returns one stored candidate
func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	candidate, err := s.lookupCandidate(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, candidate)
}

// handleCandidateReport renders a stored candidate as an Excel report
func (s *Server) handleCandidateReport(w http.ResponseWriter, r *http.Request) {
	candidate, err := s.lookupCandidate(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCandidate(&buf, candidate); err != nil {
		s.handleError(w, r, fmt.Errorf("failed to render report: %w", err))
		return
	}
	s.xlsxResponse(w, report.FileName(candidate.SourceFile), buf.Bytes())
}

// handleExportCandidates renders every stored candidate as one spreadsheet
func (s *Server) handleExportCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.store.ListCandidates(r.Context())
	if err != nil {
		s.handleError(w, r, fmt.Errorf("failed to list candidates: %w", err))
		return
	}

	var buf bytes.Buffer
	if err := report.WriteExport(&buf, candidates); err != nil {
		s.handleError(w, r, fmt.Errorf("failed to render export: %w", err))
		return
	}
	s.xlsxResponse(w, "candidates.xlsx", buf.Bytes())
}

// handleCreateJob stores a job posting
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	id, err := s.store.AddJob(r.Context(), strings.TrimSpace(req.Title), req.Description)
	if err != nil {
		s.handleError(w, r, fmt.Errorf("failed to store job: %w", err))
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]uuid.UUID{"id": id})
}

// handleListJobs lists stored job postings newest first
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.ListJobs(r.Context())
	if err != nil {
		s.handleError(w, r, fmt.Errorf("failed to list jobs: %w", err))
		return
	}
	s.jsonResponse(w, http.StatusOK, JobListResponse{Jobs: jobs, Count: len(jobs)})
}

// handleClearRecords deletes every stored candidate and job
func (s *Server) handleClearRecords(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(r.Context()); err != nil {
		s.handleError(w, r, fmt.Errorf("failed to clear records: %w", err))
		return
	}

	subject, _ := middleware.GetSubject(r)
	s.logger.Warn("records cleared", zap.String("subject", subject), zap.String("remote", r.RemoteAddr))
	w.WriteHeader(http.StatusNoContent)
}

// readUpload reads the "resume" part of a multipart request. The format comes
// from the "format" field when given, then the file extension, then the part's
// Content-Type.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &ErrUploadTooLarge{Limit: tooLarge.Limit}
		}
		return nil, &ErrValidation{Field: "resume", Message: "expected a multipart form upload"}
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		return nil, &ErrValidation{Field: "resume", Message: "required"}
	}
	defer file.Close()

	format, err := uploadFormat(r.FormValue("format"), header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	return &upload{filename: filepath.Base(header.Filename), format: format, data: data}, nil
}

func uploadFormat(explicit, filename, contentType string) (extraction.Format, error) {
	if explicit != "" {
		return extraction.ParseFormat(explicit)
	}
	format, err := extraction.FormatFromFilename(filename)
	if err == nil {
		return format, nil
	}
	if contentType != "" && contentType != "application/octet-stream" {
		if byType, typeErr := extraction.ParseFormat(contentType); typeErr == nil {
			return byType, nil
		}
	}
	return "", err
}

func (s *Server) lookupCandidate(r *http.Request) (*db.Candidate, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}

	candidate, err := s.store.GetCandidate(r.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	if candidate == nil {
		return nil, &ErrNotFound{Kind: "candidate", ID: raw}
	}
	return candidate, nil
}

// decodeJSON decodes and validates the request body into dst. It writes the
// error response and returns false on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validator.Struct(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return false
	}
	return true
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			ve := validationErrors[0]
			return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
		}
	}
	return "validation error: invalid request"
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, &ErrValidation{Field: "limit", Message: "must be a non-negative integer"}
	}
	return limit, nil
}

func (s *Server) xlsxResponse(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to write spreadsheet", zap.Error(err))
	}
}
