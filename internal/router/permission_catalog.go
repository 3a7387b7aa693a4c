package router

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/marketgate/internal/authz"

	"github.com/gin-gonic/gin"
)

const adminRoutePrefix = "/api/v1/admin/"

// 登录与个人接口不走 RBAC，不进入权限目录
var selfServiceAdminRoutes = map[string]bool{
	adminRoutePrefix + "login":    true,
	adminRoutePrefix + "me":       true,
	adminRoutePrefix + "password": true,
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 从已注册路由生成可授权的权限列表
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}
	items := make([]adminPermissionCatalogItem, 0)
	seen := make(map[string]bool)
	for _, route := range engine.Routes() {
		method := strings.ToUpper(route.Method)
		if method == http.MethodOptions || method == http.MethodHead {
			continue
		}
		if !strings.HasPrefix(route.Path, adminRoutePrefix) || selfServiceAdminRoutes[route.Path] {
			continue
		}
		object := authz.NormalizeObject(route.Path)
		permission := method + ":" + object
		if seen[permission] {
			continue
		}
		seen[permission] = true
		items = append(items, adminPermissionCatalogItem{
			Module:     permissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}
	slices.SortFunc(items, func(a, b adminPermissionCatalogItem) int {
		return cmp.Or(
			cmp.Compare(a.Module, b.Module),
			cmp.Compare(a.Object, b.Object),
			cmp.Compare(a.Method, b.Method),
		)
	})
	return items
}

// permissionModule /admin/<module>/... 取第二段
func permissionModule(object string) string {
	rest, ok := strings.CutPrefix(object, "/admin/")
	if !ok {
		return "system"
	}
	module, _, _ := strings.Cut(rest, "/")
	if module == "" {
		return "system"
	}
	return module
}
