package models

import "time"

// ReconcileRun 审核字段修复运行记录
type ReconcileRun struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	Trigger         string    `gorm:"column:trigger_source;type:varchar(20);index;not null" json:"trigger"`
	RequestedBy     uint      `gorm:"index;not null;default:0" json:"requested_by"`
	DryRun          bool      `gorm:"not null;default:false" json:"dry_run"`
	ProductsScanned int       `gorm:"not null;default:0" json:"products_scanned"`
	ProductsFixed   int       `gorm:"not null;default:0" json:"products_fixed"`
	ProductsFailed  int       `gorm:"not null;default:0" json:"products_failed"`
	ProfilesScanned int       `gorm:"not null;default:0" json:"profiles_scanned"`
	ProfilesFixed   int       `gorm:"not null;default:0" json:"profiles_fixed"`
	ProfilesFailed  int       `gorm:"not null;default:0" json:"profiles_failed"`
	UsersScanned    int       `gorm:"not null;default:0" json:"users_scanned"`
	UsersFixed      int       `gorm:"not null;default:0" json:"users_fixed"`
	UsersFailed     int       `gorm:"not null;default:0" json:"users_failed"`
	StartedAt       time.Time `gorm:"index" json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// TableName 指定表名
func (ReconcileRun) TableName() string {
	return "reconcile_runs"
}
