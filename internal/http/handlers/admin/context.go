package admin

import (
	"strings"

	handlershared "github.com/marketgate/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "admin_id")
}

func currentUsername(c *gin.Context) string {
	return strings.TrimSpace(c.GetString("username"))
}

func currentIsSuper(c *gin.Context) bool {
	return c.GetBool("admin_is_super")
}
