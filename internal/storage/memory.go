package storage

import (
	"context"
	"sort"
	"sync"

	"resume-match-go/internal/types"
)

// MemoryStore 进程内的 Repository 实现，未配置数据库时使用。读写都做深拷贝。
type MemoryStore struct {
	mu           sync.RWMutex
	jobs         map[string]*types.JobDescription
	profiles     map[string]*types.CandidateProfile
	applications map[string]*types.Application
}

var _ Repository = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:         make(map[string]*types.JobDescription),
		profiles:     make(map[string]*types.CandidateProfile),
		applications: make(map[string]*types.Application),
	}
}

func (m *MemoryStore) SaveJob(_ context.Context, job *types.JobDescription) error {
	m.mu.Lock()
	m.jobs[job.ID] = job.Clone()
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetJob(_ context.Context, id string) (*types.JobDescription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return job.Clone(), nil
}

func (m *MemoryStore) DeleteJob(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return ErrNotFound
	}
	delete(m.jobs, id)
	return nil
}

func (m *MemoryStore) ListJobs(_ context.Context, publicOnly bool) ([]*types.JobDescription, error) {
	m.mu.RLock()
	out := make([]*types.JobDescription, 0, len(m.jobs))
	for _, job := range m.jobs {
		if publicOnly && !job.IsPublic {
			continue
		}
		out = append(out, job.Clone())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) SaveProfile(_ context.Context, p *types.CandidateProfile) error {
	m.mu.Lock()
	m.profiles[p.ID] = p.Clone()
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetProfile(_ context.Context, id string) (*types.CandidateProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (m *MemoryStore) SaveApplication(_ context.Context, app *types.Application) error {
	cp := *app
	m.mu.Lock()
	m.applications[app.ID] = &cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) FindApplication(_ context.Context, userID, jobID string) (*types.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, app := range m.applications {
		if app.CandidateUserID == userID && app.JobID == jobID {
			cp := *app
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListApplications(_ context.Context, userID string) ([]*types.Application, error) {
	m.mu.RLock()
	out := []*types.Application{}
	for _, app := range m.applications {
		if app.CandidateUserID == userID {
			cp := *app
			out = append(out, &cp)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].AppliedAt.Equal(out[j].AppliedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].AppliedAt.Before(out[j].AppliedAt)
	})
	return out, nil
}
