package constants

// 用户账号状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 异步队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型
const (
	TaskApprovalReconcile = "approval:reconcile"
)

// 审核修复触发来源
const (
	ReconcileTriggerCLI      = "cli"
	ReconcileTriggerAdmin    = "admin"
	ReconcileTriggerQueue    = "queue"
	ReconcileTriggerSchedule = "schedule"
)

// 入驻激活模式
const (
	ActivationModeTransaction = "transaction"
	ActivationModeCompensate  = "compensate"
)

// 默认批量参数
const (
	DefaultReconcileBatchSize = 200
	DefaultReconcileWorkers   = 4
	MaxReconcileBatchSize     = 5000
)

// 商品默认币种与最小起订量
const (
	DefaultCurrency    = "USD"
	DefaultMinOrderQty = 1
)

// 管理端审计动作
const (
	AuditActionProductApprove   = "product_approve"
	AuditActionProductUnapprove = "product_unapprove"
	AuditActionProductStatus    = "product_status"
	AuditActionSellerStatus     = "seller_status"
	AuditActionUserStatus       = "user_status"
	AuditActionReconcileRun     = "reconcile_run"
	AuditActionReconcileEnqueue = "reconcile_enqueue"
	AuditActionPolicyGrant      = "policy_grant"
	AuditActionPolicyRevoke     = "policy_revoke"
	AuditActionAdminRolesSet    = "admin_roles_set"
)

// 审计目标类型
const (
	AuditTargetProduct   = "product"
	AuditTargetSeller    = "seller"
	AuditTargetUser      = "user"
	AuditTargetReconcile = "reconcile_run"
	AuditTargetRole      = "role"
	AuditTargetAdmin     = "admin"
)
