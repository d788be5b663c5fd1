// Package handler 实现招聘方和候选人的 HTTP 接口
package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/go-playground/validator/v10"

	"resume-match-go/internal/logger"
	"resume-match-go/internal/processor"
)

// statusFor 业务错误到 HTTP 状态码的映射
func statusFor(err error) int {
	switch {
	case errors.Is(err, processor.ErrJobNotFound),
		errors.Is(err, processor.ErrJobNotPublic),
		errors.Is(err, processor.ErrProfileNotFound):
		return consts.StatusNotFound
	case errors.Is(err, processor.ErrDuplicateApplication):
		return consts.StatusConflict
	case errors.Is(err, processor.ErrInvalidRequest),
		errors.Is(err, processor.ErrNoResumes),
		errors.Is(err, processor.ErrEmptyResume),
		errors.Is(err, processor.ErrNotApplied):
		return consts.StatusBadRequest
	default:
		return consts.StatusInternalServerError
	}
}

// writeError 统一返回 {"detail": "..."}，未知错误不暴露内部信息
func writeError(c *app.RequestContext, err error) {
	status := statusFor(err)
	var we *processor.WorkflowError
	detail := "An internal error occurred."
	if errors.As(err, &we) {
		detail = we.Message()
	}
	if status == consts.StatusInternalServerError {
		logger.Error().Err(err).Str("path", string(c.Path())).Msg("请求处理失败")
	}
	c.JSON(status, utils.H{"detail": detail})
}

func badRequest(c *app.RequestContext, detail string) {
	c.JSON(consts.StatusBadRequest, utils.H{"detail": detail})
}

// validationDetail 把 validator 的错误整理成一句话
func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body."
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return "Invalid request body: " + strings.Join(parts, "; ")
}

// readFile 读取上传文件，超过 limit 字节时报错
func readFile(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	if limit > 0 && fh.Size > limit {
		return nil, fmt.Errorf("file %s exceeds %d bytes", fh.Filename, limit)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("打开上传文件失败: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}
