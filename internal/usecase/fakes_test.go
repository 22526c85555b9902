package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fadilmartias/resume-scanner/internal/config"
	"github.com/fadilmartias/resume-scanner/internal/dto"
	"github.com/fadilmartias/resume-scanner/internal/model"
	"github.com/fadilmartias/resume-scanner/internal/repository"
	"github.com/fadilmartias/resume-scanner/internal/service"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errFake = errors.New("model unavailable")

type fakeGemini struct {
	mu      sync.Mutex
	prompts []string

	text      func(prompt string) (string, error)
	json      func(prompt string) (string, error)
	profile   func(filename string) (*dto.ResumeProfile, error)
	embedding func(text string) ([]float32, error)
}

func (f *fakeGemini) record(prompt string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
}

func (f *fakeGemini) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func (f *fakeGemini) GenerateText(_ context.Context, prompt string) (string, error) {
	f.record(prompt)
	if f.text == nil {
		return "", errFake
	}
	return f.text(prompt)
}

func (f *fakeGemini) GenerateJSON(_ context.Context, prompt string) (string, error) {
	f.record(prompt)
	if f.json == nil {
		return "", errFake
	}
	return f.json(prompt)
}

func (f *fakeGemini) ExtractProfile(_ context.Context, filename string, _ []byte) (*dto.ResumeProfile, error) {
	if f.profile == nil {
		return nil, errFake
	}
	return f.profile(filename)
}

func (f *fakeGemini) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if f.embedding == nil {
		return nil, errFake
	}
	return f.embedding(text)
}

type fakeOpenRouter struct {
	enabled  bool
	complete func(prompt string) (string, error)
}

func (f *fakeOpenRouter) Enabled() bool { return f.enabled }

func (f *fakeOpenRouter) Complete(_ context.Context, _, prompt string) (string, error) {
	if f.complete == nil {
		return "", errFake
	}
	return f.complete(prompt)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []service.MailMessage
	fail map[string]bool
}

func (m *fakeMailer) Send(_ context.Context, msg service.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[msg.To] {
		return errors.New("smtp rejected recipient")
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeGitHub struct {
	snap *service.RepoSnapshot
	err  error
}

func (f *fakeGitHub) FetchRepository(_ context.Context, owner, repo string) (*service.RepoSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")+"?_busy_timeout=5000"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func newResumeUsecase(t *testing.T, db *gorm.DB, gemini *fakeGemini) *ResumeUsecase {
	t.Helper()
	return NewResumeUsecase(repository.NewResumeRepository(db), gemini, &config.StorageConfig{
		UploadDir:           t.TempDir(),
		MaxFileBytes:        1 << 20,
		MaxFiles:            10,
		AnalysisConcurrency: 2,
	})
}

// profileFor builds a small profile whose name is derived from the file name.
func profileFor(filename string, skills ...string) *dto.ResumeProfile {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	return &dto.ResumeProfile{
		ContactInfo: dto.ContactInfo{FullName: name, Email: name + "@example.com"},
		Skills:      dto.Skills{TechnicalSkills: skills},
	}
}
