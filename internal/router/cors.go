package router

import (
	"strings"
	"time"

	"github.com/marketgate/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	defaultCORSMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{"Content-Type", "Content-Length", "Authorization", requestIDHeader}
)

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	return cors.New(buildCORSConfig(cfg))
}

// buildCORSConfig 配置中含 "*" 时放行任意来源；开启凭证时回显请求来源而不是 "*"
func buildCORSConfig(cfg config.CORSConfig) cors.Config {
	out := cors.Config{
		AllowMethods:     nonEmpty(cfg.AllowedMethods, defaultCORSMethods),
		AllowHeaders:     nonEmpty(cfg.AllowedHeaders, defaultCORSHeaders),
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: cfg.AllowCredentials,
	}
	if cfg.MaxAge > 0 {
		out.MaxAge = time.Duration(cfg.MaxAge) * time.Second
	}

	origins := make([]string, 0, len(cfg.AllowedOrigins))
	wildcard := len(cfg.AllowedOrigins) == 0
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			wildcard = true
			continue
		}
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	switch {
	case wildcard && cfg.AllowCredentials:
		out.AllowOriginFunc = func(string) bool { return true }
	case wildcard:
		out.AllowAllOrigins = true
	default:
		out.AllowOriginFunc = func(origin string) bool {
			for _, allowed := range origins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		}
	}
	return out
}

func nonEmpty(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}
