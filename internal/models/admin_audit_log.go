package models

import (
	"time"

	"gorm.io/datatypes"
)

// AdminAuditLog 管理端操作审计日志
// 说明：记录审核决策、店铺状态、修复任务与权限变更，只追加。
type AdminAuditLog struct {
	ID               uint              `gorm:"primarykey" json:"id"`
	OperatorAdminID  uint              `gorm:"index;not null" json:"operator_admin_id"`
	OperatorUsername string            `gorm:"type:varchar(100);index;not null;default:''" json:"operator_username"`
	Action           string            `gorm:"type:varchar(100);index;not null" json:"action"`
	TargetType       string            `gorm:"type:varchar(40);index;not null;default:''" json:"target_type"`
	TargetID         uint              `gorm:"index;not null;default:0" json:"target_id"`
	Role             string            `gorm:"type:varchar(120);index;not null;default:''" json:"role"`
	Object           string            `gorm:"type:varchar(255);not null;default:''" json:"object"`
	Method           string            `gorm:"type:varchar(20);not null;default:''" json:"method"`
	RequestID        string            `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	Detail           datatypes.JSONMap `json:"detail"`
	CreatedAt        time.Time         `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}
