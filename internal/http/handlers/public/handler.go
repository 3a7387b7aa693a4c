package public

import "github.com/marketgate/internal/provider"

// Handler 公开市场、买家账号与卖家自助接口
type Handler struct {
	*provider.Container
}

// New 创建公开接口处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
