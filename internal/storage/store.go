package storage

import (
	"context"
	"errors"

	"resume-match-go/internal/types"
)

// ErrNotFound 按 ID 查询的记录不存在
var ErrNotFound = errors.New("记录不存在")

// JobStore 岗位存储
type JobStore interface {
	SaveJob(ctx context.Context, job *types.JobDescription) error
	GetJob(ctx context.Context, id string) (*types.JobDescription, error)
	DeleteJob(ctx context.Context, id string) error
	// ListJobs 按创建时间升序返回
	ListJobs(ctx context.Context, publicOnly bool) ([]*types.JobDescription, error)
}

// ProfileStore 候选人档案存储
type ProfileStore interface {
	SaveProfile(ctx context.Context, p *types.CandidateProfile) error
	GetProfile(ctx context.Context, id string) (*types.CandidateProfile, error)
}

// ApplicationStore 投递记录存储
type ApplicationStore interface {
	SaveApplication(ctx context.Context, app *types.Application) error
	// FindApplication 没有投递记录时返回 ErrNotFound
	FindApplication(ctx context.Context, userID, jobID string) (*types.Application, error)
	ListApplications(ctx context.Context, userID string) ([]*types.Application, error)
}

// Repository 业务层使用的全部键值存储
type Repository interface {
	JobStore
	ProfileStore
	ApplicationStore
}
