package service

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/marketgate/internal/constants"
	"github.com/marketgate/internal/repository"
)

func TestAdminAuditRecordAndFilter(t *testing.T) {
	env := newServiceTestEnv(t)
	svc := NewAdminAuditService(repository.NewAdminAuditLogRepository(env.db))

	if err := svc.Record(AdminAuditRecordInput{
		OperatorAdminID:  1,
		OperatorUsername: " root ",
		Action:           constants.AuditActionProductApprove,
		TargetType:       constants.AuditTargetProduct,
		TargetID:         42,
		Method:           "post",
		Detail:           map[string]interface{}{"to_status": "approved"},
	}); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := svc.Record(AdminAuditRecordInput{
		OperatorAdminID: 2,
		Action:          constants.AuditActionSellerStatus,
		TargetType:      constants.AuditTargetSeller,
		TargetID:        7,
	}); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	// 缺少操作人或动作的记录被忽略
	_ = svc.Record(AdminAuditRecordInput{Action: constants.AuditActionProductApprove})
	_ = svc.Record(AdminAuditRecordInput{OperatorAdminID: 3})

	all, total, err := svc.List(repository.AdminAuditLogListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("want 2 logs got %d", total)
	}
	if all[0].Action != constants.AuditActionSellerStatus {
		t.Fatalf("newest log should come first: %+v", all[0])
	}

	items, total, err := svc.List(repository.AdminAuditLogListFilter{TargetType: constants.AuditTargetProduct, TargetID: 42})
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if total != 1 || items[0].OperatorUsername != "root" || items[0].Method != "POST" {
		t.Fatalf("unexpected filtered logs: %+v", items)
	}
	if items[0].Detail["to_status"] != "approved" {
		t.Fatalf("unexpected detail %+v", items[0].Detail)
	}
}

func TestAdminAuditDetailSerializesAsObject(t *testing.T) {
	env := newServiceTestEnv(t)
	svc := NewAdminAuditService(repository.NewAdminAuditLogRepository(env.db))

	if err := svc.Record(AdminAuditRecordInput{
		OperatorAdminID: 1,
		Action:          constants.AuditActionProductApprove,
		Detail:          map[string]interface{}{"dry_run": true},
	}); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := svc.Record(AdminAuditRecordInput{
		OperatorAdminID: 1,
		Action:          constants.AuditActionSellerStatus,
	}); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	items, _, err := svc.List(repository.AdminAuditLogListFilter{})
	if err != nil || len(items) != 2 {
		t.Fatalf("list failed: %v", err)
	}
	withDetail, err := json.Marshal(items[1])
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(withDetail), `"detail":{"dry_run":true}`) {
		t.Fatalf("detail should be a json object: %s", withDetail)
	}
	if items[0].Detail["dry_run"] != nil {
		t.Fatalf("empty detail leaked: %+v", items[0].Detail)
	}
}

func TestAdminAuditNilServiceIsNoop(t *testing.T) {
	var svc *AdminAuditService
	if err := svc.Record(AdminAuditRecordInput{OperatorAdminID: 1, Action: "x"}); err != nil {
		t.Fatalf("nil service should ignore records: %v", err)
	}
	items, total, err := svc.List(repository.AdminAuditLogListFilter{})
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("nil service list should be empty")
	}
}
