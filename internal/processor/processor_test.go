package processor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/config"
	"resume-match-go/internal/constants"
	"resume-match-go/internal/embedding"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/types"
)

const janeResume = `Jane Doe
jane.doe@example.com | (555) 123-4567

EXPERIENCE
Senior Software Engineer at Acme Corp, 2018 - 2020
- Built REST APIs with FastAPI

EDUCATION
Bachelor of Science in Computer Science, Stanford University, 2014 - 2018

SKILLS
Python, Machine Learning, SQL
`

const johnResume = `John Smith
john.smith@example.com

EXPERIENCE
Data Analyst, Globex Solutions, 2019 - 2021
Analysed sales data with pandas

SKILLS
Excel, Tableau
`

// stubExtractor 按文件名返回预设文本
type stubExtractor map[string]string

func (s stubExtractor) ExtractBytes(_ context.Context, filename string, _ []byte) string {
	return s[filename]
}

type recordedEvent struct {
	key     string
	payload interface{}
}

type recordingEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingEvents) Publish(_ context.Context, routingKey string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{key: routingKey, payload: payload})
	return nil
}

func (r *recordingEvents) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.key == key {
			n++
		}
	}
	return n
}

type stubArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    bool
}

func (a *stubArchive) ArchiveResume(_ context.Context, profileID, filename string, data []byte) (string, error) {
	if a.fail {
		return "", errors.New("minio unavailable")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	name := storage.ResumeObjectName(profileID, filename)
	a.objects[name] = data
	return name, nil
}

func (a *stubArchive) ArchiveParsedText(_ context.Context, profileID, text string) (string, error) {
	if a.fail {
		return "", errors.New("minio unavailable")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	name := storage.ParsedTextObjectName(profileID)
	a.objects[name] = []byte(text)
	return name, nil
}

func (a *stubArchive) GetObject(_ context.Context, objectName string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	data, ok := a.objects[objectName]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

// memoryRankingCache 记录读写次数的排名缓存
type memoryRankingCache struct {
	mu          sync.Mutex
	entries     map[string][]types.RankedResult
	sets        int
	invalidated int
}

func newMemoryRankingCache() *memoryRankingCache {
	return &memoryRankingCache{entries: make(map[string][]types.RankedResult)}
}

func (c *memoryRankingCache) GetRanking(_ context.Context, jobID, fingerprint string) ([]types.RankedResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[jobID+"/"+fingerprint]
	return r, ok, nil
}

func (c *memoryRankingCache) SetRanking(_ context.Context, jobID, fingerprint string, results []types.RankedResult, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[jobID+"/"+fingerprint] = results
	return nil
}

func (c *memoryRankingCache) InvalidateRankings(_ context.Context, jobID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	var n int64
	for k := range c.entries {
		if len(k) > len(jobID) && k[:len(jobID)+1] == jobID+"/" {
			delete(c.entries, k)
			n++
		}
	}
	return n, nil
}

type fixture struct {
	repo      *storage.MemoryStore
	events    *recordingEvents
	archive   *stubArchive
	cache     *memoryRankingCache
	embedder  *embedding.Service
	jobs      *JobProcessor
	recruiter *RecruiterService
	candidate *CandidateService
}

var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	nop := zerolog.Nop()
	emb := embedding.NewService(config.EmbeddingConfig{Provider: "hashing", Model: "hashing-v1", Dimensions: 64},
		embedding.WithServiceLogger(nop))
	p := parser.New(parser.WithPersonRecognizer(nil), parser.WithLogger(nop),
		parser.WithClock(func() time.Time { return fixedNow }))
	builder := NewProfileBuilder(p, emb, WithBuilderLogger(nop))

	f := &fixture{
		repo:     storage.NewMemoryStore(),
		events:   &recordingEvents{},
		archive:  &stubArchive{objects: make(map[string][]byte)},
		cache:    newMemoryRankingCache(),
		embedder: emb,
	}
	extractor := stubExtractor{
		"jane.pdf":  janeResume,
		"john.docx": johnResume,
		"blank.pdf": "   ",
	}
	c := NewComponents(f.repo, extractor, builder, emb,
		WithArchive(f.archive), WithEvents(f.events), WithRankingCache(f.cache))
	opts := []SettingOpt{WithWorkers(2), WithSettingsLogger(nop)}
	f.jobs = NewJobProcessor(c, opts...)
	f.recruiter = NewRecruiterService(c, opts...)
	f.candidate = NewCandidateService(c, opts...)
	return f
}

func (f *fixture) createJob(t *testing.T, public bool) *types.JobDescription {
	t.Helper()
	job, err := f.jobs.Create(context.Background(), types.JobInput{
		Title:       "Senior Python Developer",
		Description: "Looking for an experienced Python Developer with expertise in FastAPI and Machine Learning.",
		IsPublic:    &public,
	})
	require.NoError(t, err)
	return job
}

func TestProfileBuilderBuild(t *testing.T) {
	nop := zerolog.Nop()
	emb := embedding.NewService(config.EmbeddingConfig{Provider: "hashing", Model: "hashing-v1", Dimensions: 32},
		embedding.WithServiceLogger(nop))
	p := parser.New(parser.WithPersonRecognizer(nil), parser.WithLogger(nop))
	b := NewProfileBuilder(p, emb,
		WithBuilderLogger(nop),
		WithBuilderClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "profile-1" }),
	)

	t.Run("empty input", func(t *testing.T) {
		profile := b.Build(context.Background(), "  \n\t ", "user-1")
		assert.Equal(t, "profile-1", profile.ID)
		assert.Equal(t, "user-1", profile.UserID)
		assert.Equal(t, types.ParseFailureMarker, profile.RawText)
		assert.True(t, profile.ParseFailed())
		assert.Empty(t, profile.Embedding)
		assert.Empty(t, profile.EmbeddingModel)
		assert.Equal(t, fixedNow, profile.CreatedAt)
	})

	t.Run("resume text", func(t *testing.T) {
		profile := b.Build(context.Background(), janeResume, "")
		assert.False(t, profile.ParseFailed())
		assert.Equal(t, "jane.doe@example.com", profile.Email)
		assert.Contains(t, profile.Skills, "python")
		require.Len(t, profile.Embedding, 32)
		assert.False(t, embedding.IsZero(profile.Embedding))
		assert.Equal(t, "hashing-v1", profile.EmbeddingModel)
		assert.Equal(t, embedding.TextHash(profile.SummaryText()), profile.SummaryHash)
	})
}

// 向量模型不可用时零向量照样保存，排名阶段剔除
func TestZeroEmbeddingsAreKept(t *testing.T) {
	ctx := context.Background()
	nop := zerolog.Nop()
	emb := embedding.NewService(config.EmbeddingConfig{Provider: "broken", Dimensions: 8, PlaceholderDimensions: 8},
		embedding.WithServiceLogger(nop))
	require.False(t, emb.Ready())

	p := parser.New(parser.WithPersonRecognizer(nil), parser.WithLogger(nop))
	builder := NewProfileBuilder(p, emb, WithBuilderLogger(nop))
	repo := storage.NewMemoryStore()
	c := NewComponents(repo, stubExtractor{"jane.pdf": janeResume}, builder, emb)
	jobs := NewJobProcessor(c, WithSettingsLogger(nop))
	recruiter := NewRecruiterService(c, WithSettingsLogger(nop))

	profile := builder.Build(ctx, janeResume, "")
	require.Len(t, profile.Embedding, 8)
	assert.True(t, embedding.IsZero(profile.Embedding))
	assert.Equal(t, emb.Model(), profile.EmbeddingModel)
	assert.Equal(t, embedding.TextHash(profile.SummaryText()), profile.SummaryHash)

	job, err := jobs.Create(ctx, types.JobInput{Title: "Go Developer", Description: "Go services"})
	require.NoError(t, err)
	require.Len(t, job.Embedding, 8)
	assert.True(t, embedding.IsZero(job.Embedding))

	_, err = recruiter.ProcessResumes(ctx, job.ID, []Upload{{Filename: "jane.pdf", Data: []byte("x")}})
	assert.ErrorIs(t, err, ErrRankingEmpty)
}

func TestJobProcessorCRUD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.jobs.Create(ctx, types.JobInput{Title: " ", Description: "x"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	job := f.createJob(t, true)
	assert.NotEmpty(t, job.ID)
	assert.True(t, job.IsPublic)
	require.Len(t, job.Embedding, 64)
	assert.Equal(t, embedding.TextHash(job.SummaryText()), job.SummaryHash)
	assert.Equal(t, 1, f.events.count(constants.RoutingKeyJobUpdated))

	job.ProcessedCandidateIDs = []string{"p1"}
	require.NoError(t, f.repo.SaveJob(ctx, job))

	private := false
	updated, err := f.jobs.Update(ctx, job.ID, types.JobInput{Title: "Data Scientist", Description: "pandas", IsPublic: &private})
	require.NoError(t, err)
	assert.Equal(t, "Data Scientist", updated.Title)
	assert.False(t, updated.IsPublic)
	assert.Equal(t, []string{"p1"}, updated.ProcessedCandidateIDs)
	assert.NotEqual(t, job.SummaryHash, updated.SummaryHash)
	assert.Equal(t, 2, f.events.count(constants.RoutingKeyJobUpdated))

	public, err := f.jobs.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, public)
	all, err := f.jobs.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.jobs.Update(ctx, "missing", types.JobInput{Title: "a", Description: "b"})
	assert.ErrorIs(t, err, ErrJobNotFound)

	require.NoError(t, f.jobs.Delete(ctx, job.ID))
	_, err = f.jobs.Get(ctx, job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.ErrorIs(t, f.jobs.Delete(ctx, job.ID), ErrJobNotFound)
	assert.Equal(t, 3, f.cache.invalidated)
}

func TestSeedDemoJobs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	seeded, err := f.jobs.SeedDemoJobs(ctx)
	require.NoError(t, err)
	require.Len(t, seeded, 2)
	assert.Equal(t, "Senior Python Developer", seeded[0].Title)
	assert.Equal(t, "Data Scientist", seeded[1].Title)

	again, err := f.jobs.SeedDemoJobs(ctx)
	require.NoError(t, err)
	assert.Len(t, again, 2)
	all, _ := f.jobs.List(ctx, false)
	assert.Len(t, all, 2)
}

func TestProcessResumes(t *testing.T) {
	ctx := context.Background()

	t.Run("job missing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.recruiter.ProcessResumes(ctx, "missing", []Upload{{Filename: "jane.pdf"}})
		assert.ErrorIs(t, err, ErrJobNotFound)
		assert.Equal(t, "Job not found. Please create the job first.", PublicMessage(err))
	})

	t.Run("no files", func(t *testing.T) {
		f := newFixture(t)
		job := f.createJob(t, true)
		_, err := f.recruiter.ProcessResumes(ctx, job.ID, nil)
		assert.ErrorIs(t, err, ErrNoResumes)
	})

	t.Run("only blank resumes", func(t *testing.T) {
		f := newFixture(t)
		job := f.createJob(t, true)
		_, err := f.recruiter.ProcessResumes(ctx, job.ID, []Upload{{Filename: "blank.pdf"}, {Filename: "unknown.txt"}})
		assert.ErrorIs(t, err, ErrNoValidProfiles)

		stored, err := f.jobs.Get(ctx, job.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.ProcessedCandidateIDs)
	})

	t.Run("mixed batch", func(t *testing.T) {
		f := newFixture(t)
		job := f.createJob(t, true)
		uploads := []Upload{
			{Filename: "jane.pdf", Data: []byte("%PDF jane")},
			{Filename: "blank.pdf", Data: []byte("%PDF")},
			{Filename: "john.docx", Data: []byte("PK john")},
		}
		results, err := f.recruiter.ProcessResumes(ctx, job.ID, uploads)
		require.NoError(t, err)
		require.Len(t, results, 2)
		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i-1].MatchScore, results[i].MatchScore)
		}
		for _, r := range results {
			assert.Empty(t, r.CandidateProfile.RawText)
		}

		stored, err := f.jobs.Get(ctx, job.ID)
		require.NoError(t, err)
		require.Len(t, stored.ProcessedCandidateIDs, 2)

		first, err := f.repo.GetProfile(ctx, stored.ProcessedCandidateIDs[0])
		require.NoError(t, err)
		assert.Equal(t, "jane.doe@example.com", first.Email)
		assert.NotEmpty(t, first.RawText)

		assert.Equal(t, 2, f.events.count(constants.RoutingKeyResumeParsed))
		assert.Len(t, f.archive.objects, 4)
		assert.Contains(t, f.archive.objects, storage.ResumeObjectName(first.ID, "jane.pdf"))
	})

	t.Run("archive failure is not fatal", func(t *testing.T) {
		f := newFixture(t)
		f.archive.fail = true
		job := f.createJob(t, true)
		results, err := f.recruiter.ProcessResumes(ctx, job.ID, []Upload{{Filename: "jane.pdf"}})
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}

func TestRankedCandidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.createJob(t, true)

	_, err := f.recruiter.RankedCandidates(ctx, "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = f.recruiter.RankedCandidates(ctx, job.ID)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = f.recruiter.ProcessResumes(ctx, job.ID, []Upload{{Filename: "jane.pdf"}})
	require.NoError(t, err)
	_, err = f.recruiter.ProcessResumes(ctx, job.ID, []Upload{{Filename: "john.docx"}})
	require.NoError(t, err)

	first, err := f.recruiter.RankedCandidates(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, f.cache.sets)

	second, err := f.recruiter.RankedCandidates(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.cache.sets)

	// 岗位更新后指纹变化，重新排名
	_, err = f.jobs.Update(ctx, job.ID, types.JobInput{Title: "Data Analyst", Description: "pandas and Excel"})
	require.NoError(t, err)
	_, err = f.recruiter.RankedCandidates(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, f.cache.sets)
}

func TestRankedCandidatesMissingProfiles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.createJob(t, true)
	job.ProcessedCandidateIDs = []string{"gone-1", "gone-2"}
	require.NoError(t, f.repo.SaveJob(ctx, job))

	_, err := f.recruiter.RankedCandidates(ctx, job.ID)
	assert.ErrorIs(t, err, ErrNoValidProfiles)
}

func TestScheduleInterview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.createJob(t, true)
	_, err := f.recruiter.ProcessResumes(ctx, job.ID, []Upload{{Filename: "jane.pdf"}})
	require.NoError(t, err)
	stored, _ := f.jobs.Get(ctx, job.ID)
	profileID := stored.ProcessedCandidateIDs[0]

	tests := []struct {
		name    string
		req     types.InterviewRequest
		wantErr error
	}{
		{"job missing", types.InterviewRequest{JobID: "x", CandidateProfileID: profileID, InterviewerIDs: []string{"i"}, PreferredDatesTimes: []string{"t"}}, ErrJobNotFound},
		{"profile missing", types.InterviewRequest{JobID: job.ID, CandidateProfileID: "x", InterviewerIDs: []string{"i"}, PreferredDatesTimes: []string{"t"}}, ErrProfileNotFound},
		{"no interviewers", types.InterviewRequest{JobID: job.ID, CandidateProfileID: profileID, PreferredDatesTimes: []string{"t"}}, ErrInvalidRequest},
		{"no times", types.InterviewRequest{JobID: job.ID, CandidateProfileID: profileID, InterviewerIDs: []string{"i"}}, ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.recruiter.ScheduleInterview(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	got, err := f.recruiter.ScheduleInterview(ctx, types.InterviewRequest{
		JobID:               job.ID,
		CandidateProfileID:  profileID,
		InterviewerIDs:      []string{"interviewer-1"},
		PreferredDatesTimes: []string{"2024-06-03T10:00:00Z"},
	})
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, 1, f.events.count(constants.RoutingKeyInterviewRequested))
}

func TestCandidateFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.createJob(t, true)
	hidden := f.createJob(t, false)

	jobs, err := f.candidate.PublicJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)

	_, err = f.candidate.PublicJob(ctx, hidden.ID)
	assert.ErrorIs(t, err, ErrJobNotPublic)
	_, err = f.candidate.Apply(ctx, hidden.ID, "u1", Upload{Filename: "jane.pdf"})
	assert.ErrorIs(t, err, ErrJobNotPublic)

	app, err := f.candidate.Apply(ctx, job.ID, "u1", Upload{Filename: "jane.pdf"})
	require.NoError(t, err)
	assert.Equal(t, types.StatusApplied, app.Status)
	assert.Equal(t, "u1", app.CandidateUserID)

	_, err = f.candidate.Apply(ctx, job.ID, "u1", Upload{Filename: "john.docx"})
	assert.ErrorIs(t, err, ErrDuplicateApplication)

	_, err = f.candidate.Apply(ctx, job.ID, "u2", Upload{Filename: "blank.pdf"})
	assert.ErrorIs(t, err, ErrEmptyResume)

	defaultApp, err := f.candidate.Apply(ctx, job.ID, "", Upload{Filename: "john.docx"})
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultCandidateUserID, defaultApp.CandidateUserID)

	apps, err := f.candidate.Applications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, app.ID, apps[0].ID)

	none, err := f.candidate.Applications(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	err = f.candidate.SubmitAvailability(ctx, "u2", types.CandidateAvailability{JobID: job.ID, AvailableSlots: []string{"mon"}})
	assert.ErrorIs(t, err, ErrNotApplied)
	require.NoError(t, f.candidate.SubmitAvailability(ctx, "u1", types.CandidateAvailability{JobID: job.ID, AvailableSlots: []string{"mon"}}))
	assert.Equal(t, 1, f.events.count(constants.RoutingKeyAvailabilitySubmitted))

	profile, err := f.candidate.Profile(ctx, app.CandidateProfileID)
	require.NoError(t, err)
	assert.Empty(t, profile.RawText)
	assert.Equal(t, "u1", profile.UserID)
	stored, _ := f.repo.GetProfile(ctx, app.CandidateProfileID)
	assert.NotEmpty(t, stored.RawText)

	_, err = f.candidate.Profile(ctx, "missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
