package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/marketgate/internal/authz"
	"github.com/marketgate/internal/cache"
	"github.com/marketgate/internal/constants"
	"github.com/marketgate/internal/http/response"
	"github.com/marketgate/internal/logger"
	"github.com/marketgate/internal/repository"
	"github.com/marketgate/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey           = "request_id"
	requestIDHeader        = "X-Request-ID"
	adminIsSuperContextKey = "admin_is_super"
	maxRequestIDLength     = 128
)

// 鉴权失败提示
const (
	msgJWTSecretMissing  = "authentication is not configured"
	msgAuthHeaderMissing = "missing Authorization header"
	msgAuthHeaderInvalid = "Authorization header must be: Bearer <token>"
	msgTokenInvalid      = "invalid or expired token"
	msgTokenRevoked      = "token has been revoked"
	msgUserDisabled      = "account is disabled"
	msgUnauthorized      = "unauthorized"
	msgForbidden         = "permission denied"
)

// RequestIDMiddleware 透传或生成 X-Request-ID，并把带 request_id 的 logger 绑定到请求 context
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		ctx := logger.WithContext(c.Request.Context(), logger.SW("request_id", requestID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// LoggerMiddleware 请求日志；业务错误同样走 200，所以只按 gin 错误区分级别
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		switch {
		case len(c.Errors) > 0:
			sugar.Errorw("http_request", append(fields, "errors", c.Errors.String())...)
		case c.Writer.Status() >= http.StatusInternalServerError:
			sugar.Errorw("http_request", fields...)
		default:
			sugar.Infow("http_request", fields...)
		}
	}
}

func getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func abortUnauthorized(c *gin.Context, msg string) {
	response.Unauthorized(c, msg)
	c.Abort()
}

// bearerToken 解析 Authorization 头，失败时返回提示文案
func bearerToken(c *gin.Context) (string, string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", msgAuthHeaderMissing
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || scheme != "Bearer" || token == "" {
		return "", msgAuthHeaderInvalid
	}
	return token, ""
}

// verifyBearer 校验 HS256 令牌并填充 claims，失败时已写出 401
func verifyBearer(c *gin.Context, secretKey string, claims jwt.Claims) bool {
	if secretKey == "" {
		abortUnauthorized(c, msgJWTSecretMissing)
		return false
	}
	raw, msg := bearerToken(c)
	if msg != "" {
		abortUnauthorized(c, msg)
		return false
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil || !token.Valid {
		abortUnauthorized(c, msgTokenInvalid)
		return false
	}
	return true
}

// JWTAuthMiddleware 管理员令牌鉴权；token_version 不一致视为已吊销
func JWTAuthMiddleware(secretKey string, adminRepo repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := &service.JWTClaims{}
		if !verifyBearer(c, secretKey, claims) {
			return
		}
		if claims.AdminID == 0 || adminRepo == nil {
			abortUnauthorized(c, msgTokenInvalid)
			return
		}

		state, hit, err := cache.GetAdminAuthState(c.Request.Context(), claims.AdminID)
		if err != nil || !hit {
			admin, err := adminRepo.GetByID(claims.AdminID)
			if err != nil || admin == nil {
				abortUnauthorized(c, msgTokenInvalid)
				return
			}
			state = cache.BuildAdminAuthState(admin)
			_ = cache.SetAdminAuthState(c.Request.Context(), state)
		}
		if claims.TokenVersion != state.TokenVersion {
			abortUnauthorized(c, msgTokenRevoked)
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("username", claims.Username)
		c.Set(adminIsSuperContextKey, state.IsSuper)
		c.Next()
	}
}

// AdminRBACMiddleware 按路由模板做 RBAC 判定，超级管理员直接放行
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortUnauthorized(c, msgUnauthorized)
			return
		}
		if c.GetBool(adminIsSuperContextKey) {
			c.Next()
			return
		}
		adminID := c.GetUint("admin_id")
		if adminID == 0 {
			abortUnauthorized(c, msgUnauthorized)
			return
		}

		resource := c.FullPath()
		if resource == "" {
			resource = c.Request.URL.Path
		}
		allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed",
				"admin_id", adminID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			abortUnauthorized(c, msgUnauthorized)
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied",
				"admin_id", adminID,
				"method", c.Request.Method,
				"resource", authz.NormalizeObject(resource),
			)
			response.Forbidden(c, msgForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserJWTAuthMiddleware 用户令牌鉴权；禁用账号与吊销的令牌都返回 401
func UserJWTAuthMiddleware(secretKey string, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := &service.UserJWTClaims{}
		if !verifyBearer(c, secretKey, claims) {
			return
		}
		if claims.UserID == 0 || userRepo == nil {
			abortUnauthorized(c, msgTokenInvalid)
			return
		}

		state, hit, err := cache.GetUserAuthState(c.Request.Context(), claims.UserID)
		if err != nil || !hit {
			user, err := userRepo.GetByID(claims.UserID)
			if err != nil || user == nil {
				abortUnauthorized(c, msgTokenInvalid)
				return
			}
			state = cache.BuildUserAuthState(user)
			_ = cache.SetUserAuthState(c.Request.Context(), state)
		}
		if !strings.EqualFold(strings.TrimSpace(state.Status), constants.UserStatusActive) {
			abortUnauthorized(c, msgUserDisabled)
			return
		}
		if claims.TokenVersion != state.TokenVersion {
			abortUnauthorized(c, msgTokenRevoked)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Next()
	}
}
