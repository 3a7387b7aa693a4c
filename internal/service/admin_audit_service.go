package service

import (
	"strings"
	"time"

	"github.com/marketgate/internal/models"
	"github.com/marketgate/internal/repository"

	"gorm.io/datatypes"
)

// AdminAuditRecordInput 审计记录输入
type AdminAuditRecordInput struct {
	OperatorAdminID  uint
	OperatorUsername string
	Action           string
	TargetType       string
	TargetID         uint
	Role             string
	Object           string
	Method           string
	RequestID        string
	Detail           map[string]interface{}
}

// AdminAuditService 管理端审计服务
type AdminAuditService struct {
	repo repository.AdminAuditLogRepository
}

// NewAdminAuditService 创建审计服务
func NewAdminAuditService(repo repository.AdminAuditLogRepository) *AdminAuditService {
	return &AdminAuditService{repo: repo}
}

// Record 记录审计日志，缺少操作人或动作时忽略
func (s *AdminAuditService) Record(input AdminAuditRecordInput) error {
	if s == nil || s.repo == nil {
		return nil
	}
	if input.OperatorAdminID == 0 {
		return nil
	}
	if strings.TrimSpace(input.Action) == "" {
		return nil
	}

	var detail datatypes.JSONMap
	if len(input.Detail) > 0 {
		detail = datatypes.JSONMap(input.Detail)
	}

	item := &models.AdminAuditLog{
		OperatorAdminID:  input.OperatorAdminID,
		OperatorUsername: strings.TrimSpace(input.OperatorUsername),
		Action:           strings.TrimSpace(input.Action),
		TargetType:       strings.TrimSpace(input.TargetType),
		TargetID:         input.TargetID,
		Role:             strings.TrimSpace(input.Role),
		Object:           strings.TrimSpace(input.Object),
		Method:           strings.ToUpper(strings.TrimSpace(input.Method)),
		RequestID:        strings.TrimSpace(input.RequestID),
		Detail:           detail,
		CreatedAt:        time.Now(),
	}
	return s.repo.Create(item)
}

// List 管理端查询审计日志
func (s *AdminAuditService) List(filter repository.AdminAuditLogListFilter) ([]models.AdminAuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AdminAuditLog{}, 0, nil
	}
	return s.repo.List(filter)
}
