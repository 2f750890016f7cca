package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
)

func TestEmbeddedMigrationsAreAnnotated(t *testing.T) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(names))
	}

	for _, name := range names {
		body, err := fs.ReadFile(files, name)
		if err != nil {
			t.Fatalf("read %s failed: %v", name, err)
		}
		text := string(body)
		if !strings.Contains(text, "-- +goose Up") || !strings.Contains(text, "-- +goose Down") {
			t.Fatalf("%s is missing goose annotations", name)
		}
	}
}

func TestUniqueConstraintsExist(t *testing.T) {
	body, err := fs.ReadFile(files, "00001_accounts.sql")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	for _, key := range []string{"uq_users_canonical_email", "uq_profiles_username"} {
		if !strings.Contains(string(body), key) {
			t.Fatalf("expected unique key %s", key)
		}
	}
}

func TestUp_UsesSeam(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	called := false
	gooseUp = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		called = true
		if dir != "." {
			t.Fatalf("expected dir '.', got %q", dir)
		}
		return errors.New("boom")
	}

	if err := Up(context.Background(), nil); err == nil || err.Error() != "boom" {
		t.Fatalf("expected seam error, got %v", err)
	}
	if !called {
		t.Fatalf("expected seam to be called")
	}
}
