package storage_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/config"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/storage/models"
	"resume-match-go/internal/types"
)

func TestMemoryStoreJobs(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveJob(ctx, &types.JobDescription{ID: "b", Title: "Second", IsPublic: true, CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, s.SaveJob(ctx, &types.JobDescription{ID: "a", Title: "First", IsPublic: true, CreatedAt: base}))
	require.NoError(t, s.SaveJob(ctx, &types.JobDescription{ID: "c", Title: "Private", CreatedAt: base}))

	all, err := s.ListJobs(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "c", "b"}, []string{all[0].ID, all[1].ID, all[2].ID})

	public, err := s.ListJobs(ctx, true)
	require.NoError(t, err)
	assert.Len(t, public, 2)

	// 返回的是副本
	job, err := s.GetJob(ctx, "a")
	require.NoError(t, err)
	job.AddProcessedCandidate("p1")
	again, err := s.GetJob(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, again.ProcessedCandidateIDs)

	require.NoError(t, s.DeleteJob(ctx, "a"))
	_, err = s.GetJob(ctx, "a")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteJob(ctx, "a"), storage.ErrNotFound)
}

func TestMemoryStoreProfilesAndApplications(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()

	p := &types.CandidateProfile{ID: "p1", Name: "Jane Doe", Skills: []string{"go"}, RawText: "raw"}
	require.NoError(t, s.SaveProfile(ctx, p))
	p.Skills[0] = "mutated"
	got, err := s.GetProfile(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, got.Skills)
	assert.Equal(t, "raw", got.RawText)

	_, err = s.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	now := time.Now()
	require.NoError(t, s.SaveApplication(ctx, &types.Application{ID: "a2", CandidateUserID: "u1", JobID: "j2", AppliedAt: now.Add(time.Minute)}))
	require.NoError(t, s.SaveApplication(ctx, &types.Application{ID: "a1", CandidateUserID: "u1", JobID: "j1", AppliedAt: now}))
	require.NoError(t, s.SaveApplication(ctx, &types.Application{ID: "a3", CandidateUserID: "u2", JobID: "j1", AppliedAt: now}))

	app, err := s.FindApplication(ctx, "u1", "j2")
	require.NoError(t, err)
	assert.Equal(t, "a2", app.ID)
	_, err = s.FindApplication(ctx, "u2", "j2")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	apps, err := s.ListApplications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "a1", apps[0].ID)

	none, err := s.ListApplications(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestModelConversion(t *testing.T) {
	p := &types.CandidateProfile{
		ID:                   "p1",
		UserID:               "u1",
		Name:                 "Jane Doe",
		TotalExperienceYears: 3,
		Skills:               []string{"go", "sql"},
		Education:            []types.EducationRecord{{Degree: "BS", Institution: "MIT University", Year: "2015"}},
		Experience:           []types.ExperienceRecord{{Title: "Engineer", Company: "Foo Inc", Years: "2018-2020"}},
		RawText:              "raw",
		Embedding:            []float64{0.5, 0.5},
		EmbeddingModel:       "hashing-v1",
	}
	back, err := models.FromProfile(p).ToDomain()
	require.NoError(t, err)
	assert.Equal(t, p, back)

	j := &types.JobDescription{ID: "j1", Title: "Go", Description: "Go dev", IsPublic: true}
	jb, err := models.FromJob(j).ToDomain()
	require.NoError(t, err)
	assert.Equal(t, []string{}, jb.ProcessedCandidateIDs, "空列表不会变成 nil")
	assert.Equal(t, "Go dev", jb.Description)
	assert.True(t, jb.IsPublic)
}

func TestObjectNames(t *testing.T) {
	assert.Equal(t, "resumes/p1/original.pdf", storage.ResumeObjectName("p1", "Jane.PDF"))
	assert.Equal(t, "parsed/p1.txt", storage.ParsedTextObjectName("p1"))
	assert.Equal(t, "application/pdf", storage.ContentType(".PDF"))
	assert.Equal(t, "application/octet-stream", storage.ContentType(".bin"))
}

func TestNewStorageDefaultsToMemory(t *testing.T) {
	s := storage.NewStorage(context.Background(), config.DefaultConfig())
	defer s.Close()
	_, ok := s.Repository.(*storage.MemoryStore)
	assert.True(t, ok)
	assert.Nil(t, s.Redis)
	assert.Nil(t, s.MinIO)
	assert.Nil(t, s.RabbitMQ)
}

// 需要本地 Redis，未设置 REDIS_ADDRESS 时跳过
func TestRedisCaches(t *testing.T) {
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_ADDRESS 未设置")
	}
	ctx := context.Background()
	r, err := storage.NewRedisAdapter(&config.RedisConfig{Address: addr})
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.SetVector(ctx, "test-model:abc", []float64{1, 2, 3}))
	vec, ok, err := r.GetVector(ctx, "test-model:abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, vec)

	_, ok, err = r.GetVector(ctx, "test-model:missing")
	require.NoError(t, err)
	assert.False(t, ok)

	results := []types.RankedResult{{CandidateProfile: &types.CandidateProfile{ID: "p1", Skills: []string{}}, MatchScore: 88.5}}
	require.NoError(t, r.SetRanking(ctx, "job-test", "fp1", results, time.Minute))
	cached, ok, err := r.GetRanking(ctx, "job-test", "fp1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 88.5, cached[0].MatchScore)

	n, err := r.InvalidateRankings(ctx, "job-test")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, ok, err = r.GetRanking(ctx, "job-test", "fp1")
	require.NoError(t, err)
	assert.False(t, ok)
}
