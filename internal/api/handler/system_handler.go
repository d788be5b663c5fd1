package handler

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// EmbeddingStatus 健康检查需要的向量模型状态
type EmbeddingStatus interface {
	Ready() bool
	Model() string
	Dimension() int
}

// SystemHandler 根路径和健康检查
type SystemHandler struct {
	appName   string
	embedding EmbeddingStatus
}

func NewSystemHandler(appName string, embedding EmbeddingStatus) *SystemHandler {
	return &SystemHandler{appName: appName, embedding: embedding}
}

// Root GET /
func (h *SystemHandler) Root(_ context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"message": fmt.Sprintf("%s API is running!", h.appName)})
}

// Health GET /api/v1/health；向量模型不可用时仍返回 200，状态为 degraded
func (h *SystemHandler) Health(_ context.Context, c *app.RequestContext) {
	status := "ok"
	body := utils.H{}
	if h.embedding != nil {
		ready := h.embedding.Ready()
		if !ready {
			status = "degraded"
		}
		body["embedding"] = utils.H{
			"ready":      ready,
			"model":      h.embedding.Model(),
			"dimensions": h.embedding.Dimension(),
		}
	}
	body["status"] = status
	c.JSON(consts.StatusOK, body)
}
