package processor

import (
	"errors"
	"fmt"
)

// 业务流程的基础错误，handler 按这些错误映射 HTTP 状态码
var (
	ErrJobNotFound          = errors.New("job not found")
	ErrJobNotPublic         = errors.New("job not found or not public")
	ErrProfileNotFound      = errors.New("candidate profile not found")
	ErrDuplicateApplication = errors.New("you have already applied for this job")
	ErrNotApplied           = errors.New("you have not applied for this job")
	ErrNoResumes            = errors.New("no resume files provided")
	ErrNoValidProfiles      = errors.New("no valid candidate profiles could be processed")
	ErrRankingEmpty         = errors.New("ranking produced no results")
	ErrEmptyResume          = errors.New("could not process resume")
	ErrInvalidRequest       = errors.New("invalid request")
)

// WorkflowError 带操作名和对象 ID 的错误
type WorkflowError struct {
	Op      string
	ID      string
	BaseErr error
	Detail  string
}

func (e *WorkflowError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, ID:%s): %s", e.BaseErr, e.Op, e.ID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, ID:%s)", e.BaseErr, e.Op, e.ID)
}

func (e *WorkflowError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// Message 对外展示的错误信息
func (e *WorkflowError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.BaseErr.Error()
}

func NewNotFoundError(op, id string, base error) error {
	return &WorkflowError{Op: op, ID: id, BaseErr: base}
}

func NewInvalidError(op, id, detail string) error {
	return &WorkflowError{Op: op, ID: id, BaseErr: ErrInvalidRequest, Detail: detail}
}

func NewWorkflowError(op, id string, base error, detail string) error {
	return &WorkflowError{Op: op, ID: id, BaseErr: base, Detail: detail}
}

// PublicMessage 取出适合返回给调用方的错误信息
func PublicMessage(err error) string {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we.Message()
	}
	return err.Error()
}
