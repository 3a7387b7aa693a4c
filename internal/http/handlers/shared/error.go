package shared

import (
	"errors"

	"github.com/marketgate/internal/approval"
	"github.com/marketgate/internal/http/response"
	"github.com/marketgate/internal/logger"
	"github.com/marketgate/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", code,
			"message", msg,
			"error", err,
		)
	}
	response.Error(c, code, msg)
}

// MappedError 业务错误到接口错误码的映射
type MappedError struct {
	Target error
	Code   int
	Msg    string
}

// serviceErrorRules 各接口共享的业务错误映射，按顺序匹配
var serviceErrorRules = []MappedError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Msg: "resource not found"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Msg: "permission denied"},
	{Target: service.ErrProductNotOwned, Code: response.CodeForbidden, Msg: "product does not belong to this seller"},
	{Target: service.ErrNotSeller, Code: response.CodeForbidden, Msg: "seller account required"},
	{Target: service.ErrShopNotReachable, Code: response.CodeNotFound, Msg: "shop not found"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Msg: "invalid email or password"},
	{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest, Msg: "current password is incorrect"},
	{Target: service.ErrUserDisabled, Code: response.CodeUnauthorized, Msg: "account is disabled"},
	{Target: service.ErrInvalidUserStatus, Code: response.CodeBadRequest, Msg: "status must be active or disabled"},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Msg: "invalid email address"},
	{Target: service.ErrEmailExists, Code: response.CodeConflict, Msg: "email already registered"},
	{Target: service.ErrSlugExists, Code: response.CodeConflict, Msg: "slug already exists"},
	{Target: service.ErrShopSlugExists, Code: response.CodeConflict, Msg: "shop slug already exists"},
	{Target: service.ErrAlreadySeller, Code: response.CodeConflict, Msg: "user already applied to sell"},
	{Target: service.ErrShopSlugInvalid, Code: response.CodeBadRequest, Msg: "invalid shop slug"},
	{Target: service.ErrProductTitleInvalid, Code: response.CodeBadRequest, Msg: "invalid product title"},
	{Target: service.ErrProductPriceInvalid, Code: response.CodeBadRequest, Msg: "invalid product price"},
	{Target: service.ErrProductMOQInvalid, Code: response.CodeBadRequest, Msg: "invalid minimum order quantity"},
	{Target: service.ErrOnboardingIncomplete, Code: response.CodeBadRequest, Msg: "shop name, shipping policy and payout method are required"},
	{Target: service.ErrQueueUnavailable, Code: response.CodeInternal, Msg: "task queue unavailable"},
}

// RespondServiceError 按业务错误类型返回响应；未识别的错误按 fallbackMsg 返回 500 并记录日志
func RespondServiceError(c *gin.Context, err error, fallbackMsg string) {
	RespondMappedError(c, err, nil, fallbackMsg)
}

// RespondMappedError 先匹配 extra 规则，再匹配通用规则
func RespondMappedError(c *gin.Context, err error, extra []MappedError, fallbackMsg string) {
	if err == nil {
		return
	}
	if errors.Is(err, service.ErrWeakPassword) {
		// 密码策略错误自带具体原因
		RespondError(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	if errors.Is(err, approval.ErrInvalidStatus) {
		RespondError(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	for _, rules := range [][]MappedError{extra, serviceErrorRules} {
		for _, rule := range rules {
			if errors.Is(err, rule.Target) {
				RespondError(c, rule.Code, rule.Msg, nil)
				return
			}
		}
	}

	var partial *service.PartialActivationError
	if errors.As(err, &partial) {
		RequestLog(c).Errorw("handler_partial_activation",
			"profile_id", partial.ProfileID,
			"user_id", partial.UserID,
			"profile_activated", partial.ProfileActivated,
			"role_promoted", partial.RolePromoted,
			"compensated", partial.Compensated(),
			"error", partial.Err,
		)
		msg := "seller activation failed, please retry"
		if !partial.Compensated() {
			msg = "seller activation partially applied, it will be repaired by maintenance"
		}
		response.ErrorWithData(c, response.CodeInternal, msg, gin.H{
			"profile_activated": partial.ProfileActivated,
			"role_promoted":     partial.RolePromoted,
		})
		return
	}

	RespondError(c, response.CodeInternal, fallbackMsg, err)
}
