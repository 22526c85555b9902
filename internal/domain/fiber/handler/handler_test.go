package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fadilmartias/resume-scanner/internal/config"
	"github.com/fadilmartias/resume-scanner/internal/dto"
	"github.com/fadilmartias/resume-scanner/internal/model"
	"github.com/fadilmartias/resume-scanner/internal/repository"
	"github.com/fadilmartias/resume-scanner/internal/service"
	"github.com/fadilmartias/resume-scanner/internal/upload"
	"github.com/fadilmartias/resume-scanner/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errUnavailable = errors.New("model unavailable")

type stubGemini struct {
	mu   sync.Mutex
	json string
	text string
}

func (s *stubGemini) GenerateText(context.Context, string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.text == "" {
		return "", errUnavailable
	}
	return s.text, nil
}

func (s *stubGemini) GenerateJSON(context.Context, string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.json == "" {
		return "", errUnavailable
	}
	return s.json, nil
}

// ExtractProfile reads the upload as "<name>|<skill>,<skill>"; "fail"
// makes the analysis fail.
func (s *stubGemini) ExtractProfile(_ context.Context, _ string, data []byte) (*dto.ResumeProfile, error) {
	if string(data) == "fail" {
		return nil, errUnavailable
	}
	name, skills, _ := strings.Cut(string(data), "|")
	return &dto.ResumeProfile{
		ContactInfo: dto.ContactInfo{FullName: name, Email: strings.ToLower(name) + "@example.com"},
		Skills:      dto.Skills{TechnicalSkills: splitList(skills)},
	}, nil
}

func (s *stubGemini) GenerateEmbedding(context.Context, string) ([]float32, error) {
	return nil, errUnavailable
}

type stubMailer struct {
	mu   sync.Mutex
	sent []service.MailMessage
}

func (m *stubMailer) Send(_ context.Context, msg service.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type stubGitHub struct{}

func (stubGitHub) FetchRepository(_ context.Context, owner, repo string) (*service.RepoSnapshot, error) {
	return &service.RepoSnapshot{FullName: owner + "/" + repo, Files: []string{"main.go"}}, nil
}

type disabledOpenRouter struct{}

func (disabledOpenRouter) Enabled() bool { return false }
func (disabledOpenRouter) Complete(context.Context, string, string) (string, error) {
	return "", errUnavailable
}

type testServer struct {
	app     *fiber.App
	gemini  *stubGemini
	mailer  *stubMailer
	resumes *usecase.ResumeUsecase
}

func newTestServer(t *testing.T, authEnabled bool) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")+"?_busy_timeout=5000"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	storage := &config.StorageConfig{UploadDir: t.TempDir(), MaxFileBytes: 64, MaxFiles: 5, AnalysisConcurrency: 2}
	authCfg := &config.AuthConfig{Enabled: authEnabled, JWTSecret: "test-secret", TokenTTL: time.Hour}
	s := &testServer{gemini: &stubGemini{}, mailer: &stubMailer{}}

	s.resumes = usecase.NewResumeUsecase(repository.NewResumeRepository(db), s.gemini, storage)
	ranking := usecase.NewRankingUsecase(s.resumes, repository.NewRankingRepository(db), s.gemini, disabledOpenRouter{}, 2)
	auth := usecase.NewAuthUsecase(repository.NewUserRepository(db), authCfg)

	s.app = fiber.New()
	RegisterRoutes(s.app, &Handlers{
		Resume:    NewResumeHandler(s.resumes, storage),
		File:      NewFileHandler(s.resumes),
		Ranking:   NewRankingHandler(ranking),
		Candidate: NewCandidateHandler(usecase.NewCandidateUsecase(s.resumes, ranking)),
		Analytics: NewAnalyticsHandler(usecase.NewAnalyticsUsecase(s.resumes)),
		Personnel: NewPersonnelHandler(usecase.NewPersonnelUsecase(repository.NewPersonnelRepository(db), s.gemini)),
		Email: NewEmailHandler(usecase.NewEmailUsecase(repository.NewAssignmentRepository(db), s.gemini, s.mailer,
			&config.MailConfig{SenderEmail: "hr@acme.io", SenderPassword: "pw"})),
		Interview: NewInterviewHandler(usecase.NewInterviewUsecase(repository.NewChatRepository(db), s.gemini)),
		Project:   NewProjectHandler(usecase.NewProjectUsecase(stubGitHub{}, s.gemini)),
		Auth:      NewAuthHandler(auth),
	}, authCfg, auth)
	return s
}

func (s *testServer) store(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, s.resumes.Store(context.Background(), &upload.File{Name: name, SafeName: name, Data: []byte(content)}))
}

func (s *testServer) do(t *testing.T, method, target string, body any, header ...string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func TestResumeAnalysisResults(t *testing.T) {
	s := newTestServer(t, false)

	resp, _ := s.do(t, fiber.MethodGet, "/resume-analysis-results", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	s.store(t, "alice.txt", "Alice|Go")
	s.store(t, "bad.txt", "fail")

	for _, target := range []string{"/resume-analysis-results", "/api/v1/resume/resume-analysis-results"} {
		resp, body := s.do(t, fiber.MethodGet, target, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var results map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(body, &results))
		assert.Contains(t, string(results["alice.txt"]), `"full_name":"Alice"`)
		assert.JSONEq(t, `{"error":"Error processing file: model unavailable"}`, string(results["bad.txt"]))
	}
}

func TestRankResumesFallsBackToCosine(t *testing.T) {
	s := newTestServer(t, false)

	resp, body := s.do(t, fiber.MethodPost, "/rank-resumes", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "job_description is required")

	resp, _ = s.do(t, fiber.MethodPost, "/rank-resumes", dto.RankResumesRequest{JobDescription: "Go developer"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	s.store(t, "alice.txt", "Alice|Go,PostgreSQL")
	s.store(t, "bob.txt", "Bob|Photoshop")

	resp, body = s.do(t, fiber.MethodPost, "/rank-resumes", dto.RankResumesRequest{JobDescription: "Go and PostgreSQL developer"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var res dto.RankingResponse
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, usecase.MethodCosine, res.RankingMethod)
	require.Len(t, res.RankedResumes, 2)
	assert.Equal(t, "alice.txt", res.RankedResumes[0].Filename)
	assert.Equal(t, 1, res.RankedResumes[0].Rank)

	resp, body = s.do(t, fiber.MethodGet, "/api/v1/candidates?skills=go&sort=rank", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var listed struct {
		Success    bool               `json:"success"`
		Data       []dto.CandidateDTO `json:"data"`
		Pagination struct {
			TotalItems int `json:"total_items"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(body, &listed))
	assert.True(t, listed.Success)
	require.Len(t, listed.Data, 1)
	assert.Equal(t, "Alice", listed.Data[0].Name)
	require.NotNil(t, listed.Data[0].Rank)
	assert.Equal(t, 1, listed.Pagination.TotalItems)

	resp, body = s.do(t, fiber.MethodGet, "/api/v1/candidates?page=9223372036854775807", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	var past struct {
		Data       []dto.CandidateDTO `json:"data"`
		Pagination struct {
			TotalItems int `json:"total_items"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(body, &past))
	assert.Empty(t, past.Data)
	assert.Equal(t, 2, past.Pagination.TotalItems)
}

func TestGenerateChartData(t *testing.T) {
	s := newTestServer(t, false)

	resp, body := s.do(t, fiber.MethodGet, "/generate-chart-data", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "No resume data available for analysis")

	s.store(t, "alice.txt", "Alice|React,Docker")
	resp, body = s.do(t, fiber.MethodGet, "/api/v1/analytics/generate-chart-data", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out dto.ChartDataResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "Chart data generated successfully", out.Message)
	assert.Equal(t, 2, out.ChartData.SummaryStats.TotalSkills)
}

func TestSendBulkEmail(t *testing.T) {
	s := newTestServer(t, false)
	s.gemini.json = `{"subject":"Welcome","repository_name":"starter"}`
	profile, err := json.Marshal(dto.ResumeProfile{ContactInfo: dto.ContactInfo{FullName: "Alice", Email: "alice@example.com"}})
	require.NoError(t, err)

	resp, _ := s.do(t, fiber.MethodPost, "/send-email/bulk", dto.SendBulkEmailRequest{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body := s.do(t, fiber.MethodPost, "/send-email/bulk", dto.SendBulkEmailRequest{
		RankedResumes: []dto.CandidateEntry{{FullResume: profile}, {}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out dto.BulkEmailResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "Sent emails to 1 out of 2 candidates", out.Summary)
	assert.Equal(t, "failed", out.DetailedResults["candidate_1"].Status)
	require.Len(t, s.mailer.sent, 1)
	assert.Equal(t, "Welcome", s.mailer.sent[0].Subject)

	resp, _ = s.do(t, fiber.MethodPost, "/api/v1/email/send-email/individual", dto.SendIndividualEmailRequest{
		RankedResumes:  []dto.CandidateEntry{{FullResume: profile}},
		CandidateIndex: 4,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPersonnelAndBias(t *testing.T) {
	s := newTestServer(t, false)
	s.gemini.json = `{"summary":"ok","fairness_score":9}`

	resp, _ := s.do(t, fiber.MethodPost, "/api/v1/bias/bias-analysis", dto.BiasAnalysisRequest{JobTitle: "Dev", JobDescription: "Go"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, fiber.MethodPost, "/api/v1/personnel/selected-personnel/upload", map[string]any{"resume_id": "r1"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body := s.do(t, fiber.MethodPost, "/api/v1/personnel/selected-personnel/upload", map[string]any{
		"resume_id":      "r1",
		"profile":        map[string]any{"contact_info": map[string]string{"full_name": "Alice"}},
		"selection_date": "2025-01-01",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"success","message":"Personnel with ID r1 added to selected pool"}`, string(body))

	resp, body = s.do(t, fiber.MethodGet, "/api/v1/personnel/selected-personnel", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"r1"`)

	resp, body = s.do(t, fiber.MethodPost, "/api/v1/bias/bias-analysis", dto.BiasAnalysisRequest{JobTitle: "Dev", JobDescription: "Go"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"summary":"ok","fairness_score":9}`, string(body))
}

func TestChatHistoryAndInterview(t *testing.T) {
	s := newTestServer(t, false)

	resp, body := s.do(t, fiber.MethodPost, "/api/v1/interview/analyze_interview", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"error":"No matching interview history found"}`, string(body))

	resp, _ = s.do(t, fiber.MethodPost, "/api/v1/chat/update_chat_history", dto.ChatHistoryPayload{
		ConfUID:    "c1",
		HistoryUID: "h1",
		Timestamp:  "2025-01-01T00:00:00Z",
		History:    []dto.ChatHistoryItem{{Role: "ai", Timestamp: "2025-01-01T00:00:00Z", Name: "Interviewer", Content: "Hello"}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = s.do(t, fiber.MethodGet, "/api/v1/chat/get_chat_history", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"c1_h1"`)

	s.gemini.text = "Solid answers."
	resp, body = s.do(t, fiber.MethodPost, "/api/v1/interview/analyze_interview?history_uid=h1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"report":"Solid answers."}`, string(body))
}

func TestProjectEndpoints(t *testing.T) {
	s := newTestServer(t, false)
	s.gemini.json = `{"summary":"cli tool"}`

	resp, _ := s.do(t, fiber.MethodPost, "/api/v1/project/process_url_or_path", dto.ProjectInputRequest{InputPath: "./local"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body := s.do(t, fiber.MethodPost, "/api/v1/project/process_url_or_path", dto.ProjectInputRequest{InputPath: "https://github.com/acme/tool"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMETextPlain))
	assert.Contains(t, string(body), "Repository: acme/tool")

	resp, body = s.do(t, fiber.MethodPost, "/api/v1/project/analyze_project", dto.ProjectInputRequest{InputPath: "https://github.com/acme/tool"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"summary":"cli tool"}`, string(body))
}

func TestGetFile(t *testing.T) {
	s := newTestServer(t, false)
	s.store(t, "alice.txt", "Alice|Go")

	resp, body := s.do(t, fiber.MethodGet, "/api/v1/file/get_file/alice.txt", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Alice|Go", string(body))

	resp, _ = s.do(t, fiber.MethodGet, "/api/v1/file/get_file/missing.txt", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAuthGating(t *testing.T) {
	s := newTestServer(t, true)

	resp, _ := s.do(t, fiber.MethodGet, "/resume-analysis-results", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	for _, role := range []string{"hr", "candidate"} {
		resp, body := s.do(t, fiber.MethodPost, "/api/v1/auth/signup", dto.SignUpRequest{
			Email: role + "@acme.io", Password: "secret1", ConfirmPassword: "secret1", Name: role, Role: role,
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	}
	resp, _ = s.do(t, fiber.MethodPost, "/api/v1/auth/signup", dto.SignUpRequest{
		Email: "hr@acme.io", Password: "secret1", ConfirmPassword: "secret1", Name: "again", Role: "hr",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = s.do(t, fiber.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: "hr@acme.io", Password: "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token := func(email string) string {
		resp, body := s.do(t, fiber.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: email, Password: "secret1"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var out struct {
			Data dto.LoginResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(body, &out))
		return out.Data.Token
	}

	resp, _ = s.do(t, fiber.MethodGet, "/resume-analysis-results", nil, fiber.HeaderAuthorization, "Bearer "+token("candidate@acme.io"))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(t, fiber.MethodGet, "/resume-analysis-results", nil, fiber.HeaderAuthorization, "Bearer "+token("hr@acme.io"))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, fiber.MethodGet, "/api/v1/chat/get_chat_history", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

// listen serves the app on a random local port for WebSocket tests.
func (s *testServer) listen(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = s.app.Listener(ln) }()
	t.Cleanup(func() { _ = s.app.Shutdown() })
	return "ws://" + ln.Addr().String()
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestMultiUploadSocket(t *testing.T) {
	s := newTestServer(t, false)
	base := s.listen(t)
	s.store(t, "earlier.txt", "Earlier|Java")

	conn := dial(t, base+"/multi-upload")
	files := []upload.File{
		{Name: "alice.txt", Data: []byte("Alice|Go,React")},
		{Name: "bob.txt", Data: []byte("fail")},
	}
	require.NoError(t, upload.Send(conn, files, 4, true))

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var results map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(msg, &results))
	assert.Len(t, results, 3)
	assert.Contains(t, string(results["alice.txt"]), `"technical_skills": [`)
	assert.Contains(t, string(results["bob.txt"]), "Error processing file")
}

func TestMultiUploadSocketRejectsOversizedFile(t *testing.T) {
	s := newTestServer(t, false)
	conn := dial(t, s.listen(t)+"/api/v1/resume/multi-upload")

	err := upload.Send(conn, []upload.File{{Name: "big.txt", Data: bytes.Repeat([]byte("x"), 200)}}, 16, true)
	if err == nil {
		_, msg, readErr := conn.ReadMessage()
		require.NoError(t, readErr)
		assert.True(t, strings.HasPrefix(string(msg), "Unexpected error: "), string(msg))
		assert.Contains(t, string(msg), "larger than 64 bytes")
	}

	results, err := s.resumes.Results(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReadLimitLeavesRoomForControlFrames(t *testing.T) {
	assert.Equal(t, int64(64+frameSlack), readLimit(upload.Limits{MaxFileBytes: 64}))
	assert.Zero(t, readLimit(upload.Limits{}))
}

func TestResumeAnalyzeSocketRefusesOversizedFrame(t *testing.T) {
	s := newTestServer(t, false)
	conn := dial(t, s.listen(t)+"/resume-analyze")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"filename":"huge.pdf"}`)))
	// one frame far above the 64 byte file limit; the server may close
	// before the write finishes
	writeErr := conn.WriteMessage(websocket.BinaryMessage, bytes.Repeat([]byte("x"), 256<<10))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.Error(t, err, "expected the socket to close, got %q", msg)
	if writeErr == nil {
		assert.True(t, websocket.IsCloseError(err, websocket.CloseMessageTooBig), "got %v", err)
	}
}

func TestResumeAnalyzeSocket(t *testing.T) {
	s := newTestServer(t, false)
	base := s.listen(t)

	conn := dial(t, base+"/resume-analyze")
	require.NoError(t, upload.Send(conn, []upload.File{{Name: "cv.pdf", Data: []byte("Carol|Rust")}}, 1024, false))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var profile dto.ResumeProfile
	require.NoError(t, json.Unmarshal(msg, &profile))
	assert.Equal(t, "Carol", profile.ContactInfo.FullName)

	failing := dial(t, base+"/resume-analyze")
	require.NoError(t, upload.Send(failing, []upload.File{{Name: "cv.pdf", Data: []byte("fail")}}, 1024, false))
	_, msg, err = failing.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("Error processing resume: %v", errUnavailable), string(msg))

	results, err := s.resumes.Results(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSocketRoutesRequireUpgrade(t *testing.T) {
	s := newTestServer(t, false)
	resp, _ := s.do(t, fiber.MethodGet, "/multi-upload", nil)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
