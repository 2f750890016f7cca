package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPasswordPolicyValidate(t *testing.T) {
	policy := PasswordPolicy{
		MinLength:         12,
		RequireUppercase:  true,
		RequireLowercase:  true,
		RequireSpecial:    true,
		SpecialCharacters: DefaultSpecialCharacters,
	}

	if err := policy.Validate("Aa1!aaaa"); err == nil {
		t.Fatalf("expected error for short password")
	}
	if err := policy.Validate("lowercase1!aa"); err == nil {
		t.Fatalf("expected error for missing uppercase")
	}
	if err := policy.Validate("UPPERCASE1!AA"); err == nil {
		t.Fatalf("expected error for missing lowercase")
	}
	if err := policy.Validate("NoSpecialChar1"); err == nil {
		t.Fatalf("expected error for missing special")
	}
	if err := policy.Validate("Aa1!aaaaaaaa"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}
}

func TestPasswordPolicyValidate_CountsCharactersNotBytes(t *testing.T) {
	policy := PasswordPolicy{
		MinLength:         12,
		RequireUppercase:  true,
		RequireLowercase:  true,
		RequireSpecial:    true,
		SpecialCharacters: DefaultSpecialCharacters,
	}

	// 9 characters, 16 bytes.
	if err := policy.Validate("Aé!éééééé"); err == nil {
		t.Fatalf("expected error for 9-character password")
	}
	if err := policy.Validate("Aé!ééééééééé"); err != nil {
		t.Fatalf("expected 12-character password to pass, got %v", err)
	}
}

func TestPasswordPolicyValidate_SpecialSetIsRestrictive(t *testing.T) {
	policy := PasswordPolicy{
		MinLength:         4,
		RequireSpecial:    true,
		SpecialCharacters: "!",
	}

	if err := policy.Validate("abc#"); err == nil {
		t.Fatalf("expected '#' to be rejected when only '!' is configured")
	}
	if err := policy.Validate("abc!"); err != nil {
		t.Fatalf("expected '!' to satisfy the policy, got %v", err)
	}

	policy.SpecialCharacters = ""
	if err := policy.Validate("abc#"); err != nil {
		t.Fatalf("expected unicode punctuation fallback, got %v", err)
	}
}

func TestPasswordPolicyValidate_RequireNumber(t *testing.T) {
	policy := PasswordPolicy{MinLength: 1, RequireNumber: true}
	if err := policy.Validate("abc"); err == nil {
		t.Fatalf("expected error for missing number")
	}
	if err := policy.Validate("abc1"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	if got := getEnv("TEST_STRING", "default"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
	if got := getEnv("MISSING_STRING", "default"); got != "default" {
		t.Fatalf("expected default, got %q", got)
	}

	t.Setenv("TEST_DURATION", "30")
	if got := getDurationEnv("TEST_DURATION", 5*time.Minute); got != 30*time.Minute {
		t.Fatalf("expected 30m, got %v", got)
	}
	t.Setenv("TEST_DURATION", "invalid")
	if got := getDurationEnv("TEST_DURATION", 5*time.Minute); got != 5*time.Minute {
		t.Fatalf("expected default duration, got %v", got)
	}

	t.Setenv("TEST_SECONDS", "7")
	if got := getSecondsEnv("TEST_SECONDS", time.Second); got != 7*time.Second {
		t.Fatalf("expected 7s, got %v", got)
	}

	t.Setenv("TEST_BOOL", "true")
	if got := getBoolEnv("TEST_BOOL", false); got != true {
		t.Fatalf("expected true, got %v", got)
	}
	t.Setenv("TEST_BOOL", "invalid")
	if got := getBoolEnv("TEST_BOOL", true); got != true {
		t.Fatalf("expected default bool, got %v", got)
	}

	t.Setenv("TEST_INT", "42")
	if got := getIntEnv("TEST_INT", 5); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	t.Setenv("TEST_INT", "invalid")
	if got := getIntEnv("TEST_INT", 5); got != 5 {
		t.Fatalf("expected default int, got %d", got)
	}
}

func chdirTemp(t *testing.T) string {
	t.Helper()

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd failed: %v", err)
	}
	tmp := t.TempDir()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(origDir)
	})
	return tmp
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	chdirTemp(t)

	t.Setenv("JWT_SECRET", "")
	t.Setenv("MYSQL_DSN", "")
	if cfg, err := Load(); err == nil || cfg != nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	chdirTemp(t)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "")
	if cfg, err := Load(); err == nil || cfg != nil {
		t.Fatalf("expected error when MYSQL_DSN is missing")
	}
}

func TestLoadSuccess(t *testing.T) {
	chdirTemp(t)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_ISSUER", "issuer")
	t.Setenv("JWT_AUDIENCE", "audience")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(db:3306)/wellness?parseTime=true")
	t.Setenv("HTTP_PORT", "8081")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "20")
	t.Setenv("RESET_PASSWORD_TOKEN_TTL", "45")
	t.Setenv("DELETE_ACCOUNT_TOKEN_TTL", "10")
	t.Setenv("PASSWORD_MIN_LENGTH", "14")
	t.Setenv("PASSWORD_REQUIRE_UPPERCASE", "false")
	t.Setenv("SMTP_SERVER", "smtp.example.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_FROM_EMAIL", "Wellness <no-reply@example.com>")
	t.Setenv("APP_BASE_URL", "https://app.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HTTP.Port != "8081" {
		t.Fatalf("unexpected port: %s", cfg.HTTP.Port)
	}
	if cfg.DSN() != "user:pass@tcp(db:3306)/wellness?parseTime=true" {
		t.Fatalf("unexpected mysql dsn: %s", cfg.DSN())
	}
	if cfg.JWT.Issuer != "issuer" || cfg.JWT.Audience != "audience" {
		t.Fatalf("unexpected jwt claims config: %+v", cfg.JWT)
	}
	if cfg.JWT.AccessTokenTTL != 20*time.Minute || cfg.JWT.Leeway != 5*time.Minute {
		t.Fatalf("unexpected jwt durations: %v %v", cfg.JWT.AccessTokenTTL, cfg.JWT.Leeway)
	}
	if cfg.Tokens.ResetPasswordTTL != 45*time.Minute || cfg.Tokens.DeleteAccountTTL != 10*time.Minute {
		t.Fatalf("unexpected token ttl: %+v", cfg.Tokens)
	}
	if cfg.Tokens.VerifyEmailTTL != 24*time.Hour {
		t.Fatalf("expected default verify ttl, got %v", cfg.Tokens.VerifyEmailTTL)
	}
	if cfg.Password.Policy.MinLength != 14 || cfg.Password.Policy.RequireUppercase {
		t.Fatalf("unexpected password policy: %+v", cfg.Password.Policy)
	}
	if cfg.SMTP.Host != "smtp.example.com" || cfg.SMTP.Port != 465 {
		t.Fatalf("unexpected smtp config: %+v", cfg.SMTP)
	}
	if cfg.App.BaseURL != "https://app.example.com" {
		t.Fatalf("expected trailing slash to be trimmed, got %q", cfg.App.BaseURL)
	}
}

func TestLoadUsesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/wellness?parseTime=true")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HTTP.Port != "8080" || cfg.SMTP.Port != 587 {
		t.Fatalf("expected default ports, got %s %d", cfg.HTTP.Port, cfg.SMTP.Port)
	}
	if cfg.Tokens.ResetPasswordTTL != 30*time.Minute {
		t.Fatalf("expected 30m reset ttl, got %v", cfg.Tokens.ResetPasswordTTL)
	}
	if cfg.Password.Policy.MinLength != 12 || !cfg.Password.Policy.RequireSpecial {
		t.Fatalf("unexpected default policy: %+v", cfg.Password.Policy)
	}
	if cfg.Password.Algorithm != "bcrypt" || cfg.App.MinimumAge != 16 {
		t.Fatalf("unexpected defaults: %s %d", cfg.Password.Algorithm, cfg.App.MinimumAge)
	}
}

func TestLoadRejectsUnknownHashAlgorithm(t *testing.T) {
	chdirTemp(t)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "dsn")
	t.Setenv("PASSWORD_HASH_ALGORITHM", "md5")
	if cfg, err := Load(); err == nil || cfg != nil {
		t.Fatalf("expected error for unsupported hash algorithm")
	}
}

func TestLoadRejectsInvalidFromAddress(t *testing.T) {
	chdirTemp(t)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MYSQL_DSN", "dsn")
	t.Setenv("SMTP_FROM_EMAIL", "not-an-address")
	if cfg, err := Load(); err == nil || cfg != nil {
		t.Fatalf("expected error for invalid sender address")
	}
}

func TestLoadRespectsEnvFileLocation(t *testing.T) {
	tmp := chdirTemp(t)

	for _, key := range []string{"JWT_SECRET", "MYSQL_DSN", "HTTP_PORT"} {
		prev, had := os.LookupEnv(key)
		_ = os.Unsetenv(key)
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(key, prev)
				return
			}
			_ = os.Unsetenv(key)
		})
	}

	envPath := filepath.Join(tmp, ".env")
	if err := os.WriteFile(envPath, []byte("JWT_SECRET=envfile-secret\nMYSQL_DSN=user:pass@tcp(localhost:3306)/wellness?parseTime=true\nHTTP_PORT=9099\n"), 0600); err != nil {
		t.Fatalf("write .env failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.JWT.Secret != "envfile-secret" || cfg.HTTP.Port != "9099" {
		t.Fatalf("expected env file values, got %s %s", cfg.JWT.Secret, cfg.HTTP.Port)
	}
}
