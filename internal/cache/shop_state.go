package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ShopSnapshot 店铺公开页快照，只缓存可达店铺
type ShopSnapshot struct {
	ProfileID   uint   `json:"profile_id"`
	UserID      uint   `json:"user_id"`
	ShopName    string `json:"shop_name"`
	ShopSlug    string `json:"shop_slug"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CachedAt    int64  `json:"cached_at"`
}

func shopSnapshotKey(slug string) string {
	return fmt.Sprintf("shop:slug:%s", strings.ToLower(strings.TrimSpace(slug)))
}

// GetShopSnapshot 获取店铺快照
func GetShopSnapshot(ctx context.Context, slug string) (*ShopSnapshot, bool, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, false, nil
	}
	return getJSON[ShopSnapshot](ctx, shopSnapshotKey(slug))
}

// SetShopSnapshot 写入店铺快照，ttl 为 0 时不缓存
func SetShopSnapshot(ctx context.Context, snapshot *ShopSnapshot, ttl time.Duration) error {
	if snapshot == nil || strings.TrimSpace(snapshot.ShopSlug) == "" || ttl <= 0 {
		return nil
	}
	if snapshot.CachedAt == 0 {
		snapshot.CachedAt = time.Now().Unix()
	}
	return setJSON(ctx, shopSnapshotKey(snapshot.ShopSlug), snapshot, ttl)
}

// InvalidateShopSnapshot 删除店铺快照，店铺状态或资料变化时调用
func InvalidateShopSnapshot(ctx context.Context, slugs ...string) error {
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if strings.TrimSpace(slug) != "" {
			keys = append(keys, shopSnapshotKey(slug))
		}
	}
	return del(ctx, keys...)
}
