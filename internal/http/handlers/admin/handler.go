package admin

import "github.com/marketgate/internal/provider"

// Handler 管理端接口：商品审核、店铺状态、修复任务与权限管理
type Handler struct {
	*provider.Container
}

// New 创建管理端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
