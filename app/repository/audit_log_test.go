package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-wellness/app/entity"
	"github.com/vibast-solutions/ms-go-wellness/app/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

var auditLogColumns = []string{"id", "timestamp", "action", "status", "user_id"}

func TestAuditLogRepository_Create(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewAuditLogRepository(db)
	now := time.Now()
	log := &entity.AuditLog{
		Timestamp: now,
		Action:    "Register Attempt",
		Status:    "Success",
		UserID:    sql.NullInt64{Int64: 4, Valid: true},
	}

	mock.ExpectExec(`(?s)INSERT INTO audit_logs \(timestamp, action, status, user_id\) VALUES \(\?, \?, \?, \?\)`).
		WithArgs(now, "Register Attempt", "Success", sql.NullInt64{Int64: 4, Valid: true}).
		WillReturnResult(sqlmock.NewResult(12, 1))

	if err := repo.Create(context.Background(), log); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if log.ID != 12 {
		t.Fatalf("expected ID 12, got %d", log.ID)
	}
}

func TestAuditLogRepository_List_NoFilter(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewAuditLogRepository(db)
	now := time.Now()
	mock.ExpectQuery(`(?s)SELECT id, timestamp, action, status, user_id FROM audit_logs ORDER BY timestamp DESC, id DESC LIMIT \? OFFSET \?`).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(auditLogColumns).
			AddRow(uint64(2), now, "Login Attempt", "Failed: Invalid Credentials", nil).
			AddRow(uint64(1), now, "Register Attempt", "Success", int64(1)))

	logs, err := repo.List(context.Background(), repository.AuditLogFilter{Limit: 50})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].UserID.Valid {
		t.Fatalf("expected NULL user id on first row")
	}
	if !logs[1].UserID.Valid || logs[1].UserID.Int64 != 1 {
		t.Fatalf("unexpected user id on second row: %+v", logs[1].UserID)
	}
}

func TestAuditLogRepository_List_WithFilter(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := repository.NewAuditLogRepository(db)
	mock.ExpectQuery(`(?s)FROM audit_logs WHERE user_id = \? AND action = \? ORDER BY timestamp DESC, id DESC LIMIT \? OFFSET \?`).
		WithArgs(uint64(7), "Reset Password Attempt", 10, 20).
		WillReturnRows(sqlmock.NewRows(auditLogColumns))

	logs, err := repo.List(context.Background(), repository.AuditLogFilter{
		UserID: 7,
		Action: "Reset Password Attempt",
		Limit:  10,
		Offset: 20,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if logs == nil || len(logs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", logs)
	}
}
