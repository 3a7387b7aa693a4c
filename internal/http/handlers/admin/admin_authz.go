package admin

import (
	"errors"
	"net/url"
	"strings"

	"github.com/marketgate/internal/authz"
	"github.com/marketgate/internal/constants"
	handlershared "github.com/marketgate/internal/http/handlers/shared"
	"github.com/marketgate/internal/http/response"
	"github.com/marketgate/internal/logger"
	"github.com/marketgate/internal/service"

	"github.com/gin-gonic/gin"
)

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

// ListAuthzRoles 获取角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list roles", err)
		return
	}
	response.Success(c, roles)
}

// GetAuthzRolePolicies 获取角色策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role := decodeRoleParam(c.Param("role"))
	if role == "" {
		respondError(c, response.CodeBadRequest, "invalid role", nil)
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 授予角色策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondAuthzError(c, err)
		return
	}
	h.recordAudit(c, service.AdminAuditRecordInput{
		Action:     constants.AuditActionPolicyGrant,
		TargetType: constants.AuditTargetRole,
		Role:       req.Role,
		Object:     req.Object,
		Method:     req.Action,
	})
	logger.Infow("admin_authz_policy_granted",
		"operator_admin_id", c.GetUint("admin_id"),
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
	)
	response.Success(c, nil)
}

// RevokeAuthzPolicy 撤销角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	removed, err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	if !removed {
		respondError(c, response.CodeNotFound, "policy not found", nil)
		return
	}
	h.recordAudit(c, service.AdminAuditRecordInput{
		Action:     constants.AuditActionPolicyRevoke,
		TargetType: constants.AuditTargetRole,
		Role:       req.Role,
		Object:     req.Object,
		Method:     req.Action,
	})
	logger.Infow("admin_authz_policy_revoked",
		"operator_admin_id", c.GetUint("admin_id"),
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
	)
	response.Success(c, nil)
}

// GetAuthzAdminRoles 获取管理员角色
func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	adminID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load admin", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "admin not found", nil)
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load roles", err)
		return
	}
	response.Success(c, roles)
}

// SetAuthzAdminRoles 覆盖设置管理员角色
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	adminID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load admin", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "admin not found", nil)
		return
	}

	var req authzSetAdminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.AuthzService.SetAdminRoles(adminID, req.Roles); err != nil {
		respondAuthzError(c, err)
		return
	}

	h.recordAudit(c, service.AdminAuditRecordInput{
		Action:     constants.AuditActionAdminRolesSet,
		TargetType: constants.AuditTargetAdmin,
		TargetID:   adminID,
		Detail:     map[string]interface{}{"roles": req.Roles, "target_username": admin.Username},
	})
	logger.Infow("admin_authz_admin_roles_updated",
		"operator_admin_id", c.GetUint("admin_id"),
		"target_admin_id", adminID,
		"roles", req.Roles,
	)
	response.Success(c, nil)
}

func respondAuthzError(c *gin.Context, err error) {
	if errors.Is(err, authz.ErrUnavailable) {
		respondError(c, response.CodeInternal, "authz service unavailable", err)
		return
	}
	respondError(c, response.CodeBadRequest, err.Error(), nil)
}

func decodeRoleParam(value string) string {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(decoded)
}
