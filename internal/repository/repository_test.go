package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fadilmartias/resume-scanner/internal/model"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func TestResumeRepositoryUpsertReplacesByFilename(t *testing.T) {
	ctx := context.Background()
	repo := NewResumeRepository(newTestDB(t))

	require.NoError(t, repo.Upsert(ctx, &model.ResumeAnalysis{
		Filename: "alice.pdf",
		Error:    "Error processing file: boom",
	}))
	require.NoError(t, repo.Upsert(ctx, &model.ResumeAnalysis{
		Filename: "alice.pdf",
		Profile:  datatypes.JSON(`{"contact_info":{"full_name":"Alice"}}`),
	}))
	require.NoError(t, repo.Upsert(ctx, &model.ResumeAnalysis{
		Filename: "bob.pdf",
		Profile:  datatypes.JSON(`{"contact_info":{"full_name":"Bob"}}`),
	}))

	got, err := repo.FindByFilename(ctx, "alice.pdf")
	require.NoError(t, err)
	assert.Empty(t, got.Error)
	assert.False(t, got.Failed())
	assert.JSONEq(t, `{"contact_info":{"full_name":"Alice"}}`, string(got.Profile))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alice.pdf", all[0].Filename)
	assert.Equal(t, "bob.pdf", all[1].Filename)
}

func TestResumeRepositoryUpsertClearsEmbedding(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewResumeRepository(db)
	withEmbedding := func() int64 {
		var n int64
		require.NoError(t, db.Model(&model.ResumeAnalysis{}).Where("embedding IS NOT NULL").Count(&n).Error)
		return n
	}

	require.NoError(t, repo.Upsert(ctx, &model.ResumeAnalysis{
		Filename: "alice.pdf",
		Profile:  datatypes.JSON(`{"contact_info":{"full_name":"Alice"}}`),
	}))
	require.NoError(t, repo.UpdateEmbedding(ctx, "alice.pdf", pgvector.NewVector([]float32{0.1, 0.2})))
	require.Equal(t, int64(1), withEmbedding())

	require.NoError(t, repo.Upsert(ctx, &model.ResumeAnalysis{
		Filename: "alice.pdf",
		Profile:  datatypes.JSON(`{"contact_info":{"full_name":"Alice Smith"}}`),
	}))
	assert.Zero(t, withEmbedding())
}

func TestResumeRepositoryFindMissing(t *testing.T) {
	repo := NewResumeRepository(newTestDB(t))
	_, err := repo.FindByFilename(context.Background(), "nope.pdf")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRankingRepositoryReplaceLatest(t *testing.T) {
	ctx := context.Background()
	repo := NewRankingRepository(newTestDB(t))

	require.NoError(t, repo.ReplaceLatest(ctx, []model.RankedCandidate{
		{Filename: "a.pdf", Rank: 1, MatchPercentage: 90},
		{Filename: "b.pdf", Rank: 2, MatchPercentage: 50},
	}))
	require.NoError(t, repo.ReplaceLatest(ctx, []model.RankedCandidate{
		{Filename: "c.pdf", Rank: 1, MatchPercentage: 70},
	}))

	rows, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c.pdf", rows[0].Filename)

	require.NoError(t, repo.ReplaceLatest(ctx, nil))
	rows, err = repo.Latest(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPersonnelAndChatUpsert(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	personnel := NewPersonnelRepository(db)
	chats := NewChatRepository(db)

	require.NoError(t, personnel.Upsert(ctx, &model.SelectedPersonnel{ResumeID: "r1", Profile: datatypes.JSON(`{}`), SelectionDate: "2024-01-01"}))
	require.NoError(t, personnel.Upsert(ctx, &model.SelectedPersonnel{ResumeID: "r1", Profile: datatypes.JSON(`{"x":1}`), SelectionDate: "2024-02-01"}))
	rows, err := personnel.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-02-01", rows[0].SelectionDate)

	key := model.ChatHistoryKey("conf", "h1")
	require.NoError(t, chats.Upsert(ctx, &model.ChatHistory{Key: key, ConfUID: "conf", HistoryUID: "h1", History: datatypes.JSON(`[]`)}))
	require.NoError(t, chats.Upsert(ctx, &model.ChatHistory{Key: key, ConfUID: "conf", HistoryUID: "h1", History: datatypes.JSON(`[{"role":"ai"}]`)}))
	histories, err := chats.List(ctx)
	require.NoError(t, err)
	require.Len(t, histories, 1)
	assert.Equal(t, "conf_h1", histories[0].Key)
	assert.JSONEq(t, `[{"role":"ai"}]`, string(histories[0].History))
}

func TestAssignmentAndUserRepositories(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	assignments := NewAssignmentRepository(db)
	users := NewUserRepository(db)

	require.NoError(t, assignments.Save(ctx, "jane@example.com", "repo-one"))
	require.NoError(t, assignments.Save(ctx, "jane@example.com", "repo-two"))
	a, err := assignments.Find(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "repo-two", a.RepositoryName)

	require.NoError(t, users.Create(ctx, &model.User{Email: "hr@example.com", Name: "HR", Role: model.RoleHR, Password: "hash"}))
	u, err := users.FindByEmail(ctx, "  HR@example.com ")
	require.NoError(t, err)
	assert.Equal(t, model.RoleHR, u.Role)

	err = users.Create(ctx, &model.User{Email: "hr@example.com", Name: "Dup", Role: model.RoleHR})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
