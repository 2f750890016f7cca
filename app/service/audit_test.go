package service_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-wellness/app/entity"
	"github.com/vibast-solutions/ms-go-wellness/app/repository"
	"github.com/vibast-solutions/ms-go-wellness/app/service"
	"github.com/vibast-solutions/ms-go-wellness/app/types"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAuditStatus(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "Success"},
		{service.ErrTokenExpired, "Failed: Token Expired"},
		{service.ErrTokenUsed, "Failed: Token Already Used"},
		{fmt.Errorf("%w: signature invalid", service.ErrInvalidToken), "Failed: Invalid Token"},
		{&service.InvalidInputError{Fields: map[string]string{"email": "must be a valid email address"}}, "Failed: Invalid Input"},
		{fmt.Errorf("%w: too short", service.ErrWeakPassword), "Failed: Weak Password"},
		{fmt.Errorf("%w: smtp down", service.ErrMailDelivery), "Failed: Email Not Sent"},
		{service.ErrUserNotFound, "Failed: User Not Found"},
		{errors.New("connection refused"), "Failed: Internal Error"},
	}

	for _, tc := range cases {
		if got := service.AuditStatus(tc.err); got != tc.want {
			t.Fatalf("AuditStatus(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want service.Kind
	}{
		{service.ErrEmailTaken, service.KindValidation},
		{service.ErrSamePassword, service.KindValidation},
		{&service.InvalidInputError{}, service.KindValidation},
		{service.ErrUserNotFound, service.KindNotFound},
		{service.ErrTokenExpired, service.KindAuth},
		{service.ErrInvalidCredentials, service.KindAuth},
		{service.ErrTooManyRequests, service.KindThrottled},
		{service.ErrMailDelivery, service.KindInfrastructure},
		{errors.New("boom"), service.KindInfrastructure},
	}

	for _, tc := range cases {
		if got := service.KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestInvalidInputErrorMessage(t *testing.T) {
	err := &service.InvalidInputError{Fields: map[string]string{"email": "must be a valid email address"}}
	if !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected InvalidInputError to match ErrInvalidInput")
	}
	if got := err.Error(); got != "invalid input: email: must be a valid email address." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestAuditLogService_ListAppliesDefaults(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	svc := service.NewAuditLogService(repository.NewAuditLogRepository(db))
	mock.ExpectQuery(`(?s)FROM audit_logs WHERE action = \? ORDER BY timestamp DESC, id DESC LIMIT \? OFFSET \?`).
		WithArgs(service.ActionLogin, 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "timestamp", "action", "status", "user_id"}).
			AddRow(uint64(2), testNow, service.ActionLogin, "Failed: Invalid Credentials", nil).
			AddRow(uint64(1), testNow.Add(-time.Minute), service.ActionLogin, "Success", int64(3)))

	logs, err := svc.List(context.Background(), &types.ListAuditLogsRequest{Action: service.ActionLogin})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].UserID != nil {
		t.Fatalf("expected nil user id for anonymous attempt")
	}
	if logs[1].UserID == nil || *logs[1].UserID != 3 {
		t.Fatalf("unexpected user id: %v", logs[1].UserID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditLogService_ListRejectsOversizedPage(t *testing.T) {
	svc := service.NewAuditLogService(stubAuditReader{})

	_, err := svc.List(context.Background(), &types.ListAuditLogsRequest{Limit: types.MaxAuditLogLimit + 1})
	var invalid *service.InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
	if _, ok := invalid.Fields["limit"]; !ok {
		t.Fatalf("expected limit field error, got %+v", invalid.Fields)
	}
}

type stubAuditReader struct{}

func (stubAuditReader) List(context.Context, repository.AuditLogFilter) ([]*entity.AuditLog, error) {
	return nil, errors.New("should not be called")
}

func TestAdminService_Promote(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	svc := service.NewAdminService(repository.NewUserRepository(db))
	user := newUser(t, true)

	mock.ExpectQuery(findUserByEmailQuery).WithArgs(registeredEmail).WillReturnRows(userRows(user))
	mock.ExpectExec(updateUserQuery).
		WithArgs(registeredEmail, registeredEmail, user.PasswordHash, "Admin", true, sqlmock.AnyArg(), registeredUserID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	promoted, err := svc.Promote(context.Background(), " A@x.com ")
	if err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if !promoted.IsAdmin() {
		t.Fatalf("expected admin, got %s", promoted.Type)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdminService_PromoteRejections(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	svc := service.NewAdminService(repository.NewUserRepository(db))
	admin := newUser(t, true)
	admin.Type = entity.UserTypeAdmin

	mock.ExpectQuery(findUserByEmailQuery).WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery(findUserByEmailQuery).WillReturnRows(userRows(admin))

	if _, err := svc.Promote(context.Background(), "missing@x.com"); !errors.Is(err, service.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.Promote(context.Background(), registeredEmail); !errors.Is(err, service.ErrAlreadyAdmin) {
		t.Fatalf("expected ErrAlreadyAdmin, got %v", err)
	}
}

func TestAuditWriteSurvivesCancelledContext(t *testing.T) {
	f, cleanup := newFixture(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f.mock.ExpectExec(insertAuditLogQuery).
		WithArgs(sqlmock.AnyArg(), service.ActionCancelAccountDeletion, "Failed: Invalid Input", sql.NullInt64{}).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := f.svc.CancelAccountDeletion(ctx, &types.TokenRequest{}); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	f.expectationsMet(t)
}

func TestCanonicalizeEmail(t *testing.T) {
	cases := map[string]string{
		"A@X.com":                    "a@x.com",
		" User@Example.org ":         "user@example.org",
		"first.last+promo@gmail.com": "firstlast@gmail.com",
		"F.L@GoogleMail.com":         "fl@googlemail.com",
		"dots.stay@outlook.com":      "dots.stay@outlook.com",
		"no-at-sign":                 "no-at-sign",
	}
	for in, want := range cases {
		if got := service.CanonicalizeEmail(in); got != want {
			t.Fatalf("CanonicalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
