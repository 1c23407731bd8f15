package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/extraction"
	"github.com/jonathan/resume-screener/internal/matching"
	"github.com/jonathan/resume-screener/internal/parsing"
	"github.com/jonathan/resume-screener/internal/report"
	"github.com/jonathan/resume-screener/internal/server/ratelimit"
	"github.com/jonathan/resume-screener/internal/skills"
	"github.com/jonathan/resume-screener/internal/types"
	"github.com/jonathan/resume-screener/internal/vocabulary"
)

const sampleResume = `Jane Doe
jane.doe@example.com | (555) 123-4567
https://www.linkedin.com/in/janedoe https://github.com/janedoe

Backend engineer with 6 years of experience in Python and Go.
B.Sc. in Computer Science`

const sampleJD = "Backend engineer with Python, Go and Kubernetes experience"

func setupTestServer(t *testing.T, cfg Config) (*Server, db.Store) {
	t.Helper()

	store, err := db.NewFileStore(filepath.Join(t.TempDir(), "store.json"), zap.NewNop())
	require.NoError(t, err)

	vocab, err := vocabulary.New([]string{"python", "go", "kubernetes"}, nil)
	require.NoError(t, err)

	s, err := New(cfg, Deps{
		Store:  store,
		Parser: parsing.New(nil, zap.NewNop()),
		Engine: matching.New(skills.NewMatcher(vocab, skills.ModeSubstring), nil),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	return s, store
}

// multipartRequest builds a multipart POST with a "resume" file part and the given fields.
func multipartRequest(t *testing.T, path, filename, contentType string, content []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="resume"; filename=%q`, filename))
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func TestNew_RequiresDeps(t *testing.T) {
	_, err := New(Config{}, Deps{})
	assert.Error(t, err)
}

func TestHandleHealth(t *testing.T) {
	s, _ := setupTestServer(t, Config{})

	w := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	decodeBody(t, w, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	s, _ := setupTestServer(t, Config{AllowedOrigin: "https://ats.example.com"})

	w := serve(s, httptest.NewRequest(http.MethodOptions, "/match", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://ats.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestHandleParse(t *testing.T) {
	s, store := setupTestServer(t, Config{})

	w := serve(s, multipartRequest(t, "/parse", "jane.txt", "", []byte(sampleResume), nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var doc types.ParsedDocument
	decodeBody(t, w, &doc)
	assert.Equal(t, "jane.doe@example.com", types.StringOr(doc.Email, ""))
	assert.Equal(t, 6.0, doc.ExperienceYears)
	assert.Equal(t, "https://github.com/janedoe", types.StringOr(doc.Links.GitHub, ""))

	candidates, err := store.ListCandidates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, candidates, "parse does not store")
}

func TestHandleParse_FormatFromContentType(t *testing.T) {
	s, _ := setupTestServer(t, Config{})

	w := serve(s, multipartRequest(t, "/parse", "upload", "text/plain", []byte(sampleResume), nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHandleParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		wantCode int
	}{
		{
			name: "unsupported extension",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/parse", "resume.rtf", "", []byte("x"), nil)
			},
			wantCode: http.StatusUnsupportedMediaType,
		},
		{
			name: "unsupported explicit format",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/parse", "resume.txt", "", []byte("x"), map[string]string{"format": "odt"})
			},
			wantCode: http.StatusUnsupportedMediaType,
		},
		{
			name: "missing file",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/parse", "", "", nil, map[string]string{"job_description": "x"})
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader("{}"))
			},
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := setupTestServer(t, Config{})
			w := serve(s, tt.req(t))
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestHandleParse_TooLarge(t *testing.T) {
	s, _ := setupTestServer(t, Config{MaxUploadBytes: 256})

	big := bytes.Repeat([]byte("python "), 200)
	w := serve(s, multipartRequest(t, "/parse", "big.txt", "", big, nil))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
}

func TestHandleParse_EmptyDocument(t *testing.T) {
	s, _ := setupTestServer(t, Config{})

	w := serve(s, multipartRequest(t, "/parse", "broken.pdf", "", []byte("not a pdf"), nil))

	require.Equal(t, http.StatusOK, w.Code)
	var doc types.ParsedDocument
	decodeBody(t, w, &doc)
	assert.Empty(t, doc.RawText)
	assert.Equal(t, types.UnknownName, doc.Name)
	assert.Nil(t, doc.Email)
}

func TestHandleMatch_StoresCandidate(t *testing.T) {
	s, store := setupTestServer(t, Config{})

	w := serve(s, multipartRequest(t, "/match", "jane.txt", "", []byte(sampleResume), map[string]string{
		"job_description": sampleJD,
		"job_title":       "Backend Engineer",
	}))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp MatchResponse
	decodeBody(t, w, &resp)
	assert.NotEqual(t, uuid.Nil, resp.CandidateID)
	assert.Equal(t, []string{"go", "python"}, resp.Result.MatchedSkills)
	assert.Equal(t, []string{"kubernetes"}, resp.Result.MissingSkills)
	assert.Equal(t, resp.Result.Band(), resp.Band)

	stored, err := store.GetCandidate(context.Background(), resp.CandidateID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "jane.txt", stored.SourceFile)
	assert.Equal(t, "Backend Engineer", stored.JobTitle)
	assert.Equal(t, resp.Result.Score, stored.Result.Score)
}

func TestHandleMatch_RequiresJobDescription(t *testing.T) {
	s, _ := setupTestServer(t, Config{})

	w := serve(s, multipartRequest(t, "/match", "jane.txt", "", []byte(sampleResume), map[string]string{
		"job_description": "   ",
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "job_description")
}

func TestHandleScore(t *testing.T) {
	s, _ := setupTestServer(t, Config{})

	body := `{"resume_text":"Python developer","job_description":"Python developer"}`
	w := serve(s, httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp ScoreResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, 100.0, resp.Result.Score)
	assert.Equal(t, types.BandStrong, resp.Band)
}

func TestHandleScore_Validation(t *testing.T) {
	s, _ := setupTestServer(t, Config{})

	w := serve(s, httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(`{"resume_text":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation error: JobDescription - required")

	w = serve(s, httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func seedCandidates(t *testing.T, store db.Store, names ...string) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		doc := &types.ParsedDocument{Name: name, Education: []string{}}
		result := &types.MatchResult{Score: 55, MatchedSkills: []string{"go"}, MissingSkills: []string{}}
		id, err := store.AddCandidate(context.Background(), db.NewCandidate(name+".pdf", "Engineer", doc, result))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestHandleListCandidates(t *testing.T) {
	s, store := setupTestServer(t, Config{})
	seedCandidates(t, store, "Ann", "Bob", "Cid")

	w := serve(s, httptest.NewRequest(http.MethodGet, "/candidates", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp CandidateListResponse
	decodeBody(t, w, &resp)
	require.Equal(t, 3, resp.Count)
	assert.Equal(t, "Cid", resp.Candidates[0].Name, "newest first")

	w = serve(s, httptest.NewRequest(http.MethodGet, "/candidates?limit=2", nil))
	decodeBody(t, w, &resp)
	assert.Equal(t, 2, resp.Count)

	w = serve(s, httptest.NewRequest(http.MethodGet, "/candidates?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetCandidate(t *testing.T) {
	s, store := setupTestServer(t, Config{})
	ids := seedCandidates(t, store, "Ann")

	w := serve(s, httptest.NewRequest(http.MethodGet, "/candidates/"+ids[0].String(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	var c db.Candidate
	decodeBody(t, w, &c)
	assert.Equal(t, "Ann", c.Name)

	w = serve(s, httptest.NewRequest(http.MethodGet, "/candidates/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(s, httptest.NewRequest(http.MethodGet, "/candidates/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCandidateReport(t *testing.T) {
	s, store := setupTestServer(t, Config{})
	ids := seedCandidates(t, store, "Ann")

	w := serve(s, httptest.NewRequest(http.MethodGet, "/candidates/"+ids[0].String()+"/report.xlsx", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), report.FileName("Ann.pdf"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	idx, err := f.GetSheetIndex(report.ReportSheet)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, idx, 0)
}

func TestHandleExportCandidates(t *testing.T) {
	s, store := setupTestServer(t, Config{})
	seedCandidates(t, store, "Ann", "Bob")

	w := serve(s, httptest.NewRequest(http.MethodGet, "/candidates/export.xlsx", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(report.ExportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3, "header plus two candidates")
}

func TestHandleJobs(t *testing.T) {
	s, _ := setupTestServer(t, Config{})

	w := serve(s, httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(`{"title":"Backend Engineer","description":"Go and Python"}`)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]uuid.UUID
	decodeBody(t, w, &created)
	assert.NotEqual(t, uuid.Nil, created["id"])

	w = serve(s, httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(`{"title":"No description"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(s, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list JobListResponse
	decodeBody(t, w, &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Backend Engineer", list.Jobs[0].Title)
}

func TestHandleClearRecords(t *testing.T) {
	s, store := setupTestServer(t, Config{})
	seedCandidates(t, store, "Ann")

	w := serve(s, httptest.NewRequest(http.MethodDelete, "/records", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	candidates, err := store.ListCandidates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestAuth_Enabled(t *testing.T) {
	jwtCfg, err := config.NewJWTConfig(testSecret, 1)
	require.NoError(t, err)
	jwtService := NewJWTService(jwtCfg)
	s, _ := setupTestServer(t, Config{JWT: jwtService})

	w := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code, "health is public")

	w = serve(s, httptest.NewRequest(http.MethodGet, "/candidates", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwtService.GenerateToken("dashboard")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/candidates", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = serve(s, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleLogin(t *testing.T) {
	jwtCfg, err := config.NewJWTConfig(testSecret, 2)
	require.NoError(t, err)
	jwtService := NewJWTService(jwtCfg)

	hasher, err := config.NewPasswordConfig(10, "")
	require.NoError(t, err)
	hash, err := hasher.HashPassword("letmein")
	require.NoError(t, err)
	passwords, err := config.NewPasswordConfig(10, hash)
	require.NoError(t, err)

	s, _ := setupTestServer(t, Config{JWT: jwtService, Passwords: passwords})

	login := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return serve(s, req)
	}

	w := login(`{"subject":"dashboard","password":"letmein"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp TokenResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, int64(7200), resp.ExpiresIn)

	claims, err := jwtService.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "dashboard", claims.Subject)

	req := httptest.NewRequest(http.MethodGet, "/candidates", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	assert.Equal(t, http.StatusOK, serve(s, req).Code)

	w = login(`{"subject":"dashboard","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = login(`{"password":"letmein"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleLogin_DisabledWithoutPassword(t *testing.T) {
	jwtCfg, err := config.NewJWTConfig(testSecret, 1)
	require.NoError(t, err)
	s, _ := setupTestServer(t, Config{JWT: NewJWTService(jwtCfg)})

	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"subject":"a","password":"b"}`))
	assert.Equal(t, http.StatusUnauthorized, serve(s, req).Code, "falls through to the protected mux")
}

func TestRateLimit(t *testing.T) {
	s, _ := setupTestServer(t, Config{RateLimit: &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
	}})

	w := serve(s, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = serve(s, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&ErrValidation{Field: "f", Message: "m"}, http.StatusBadRequest},
		{&ErrNotFound{Kind: "candidate", ID: "x"}, http.StatusNotFound},
		{&ErrUploadTooLarge{Limit: 1}, http.StatusRequestEntityTooLarge},
		{&ErrUnauthorized{}, http.StatusUnauthorized},
		{&extraction.UnsupportedFormatError{Value: "x.rtf"}, http.StatusUnsupportedMediaType},
		{fmt.Errorf("wrapped: %w", &extraction.UnsupportedFormatError{Value: "x"}), http.StatusUnsupportedMediaType},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}
