package config

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/joho/godotenv"
)

const DefaultSpecialCharacters = "!@#$%^&*()-_=+[]{};:'\",.<>/?\\|`~"

type Config struct {
	HTTP     HTTPConfig
	MySQL    MySQLConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Tokens   TokenConfig
	Password PasswordConfig
	SMTP     SMTPConfig
	App      AppConfig
	Throttle ThrottleConfig
	Log      LogConfig
}

type HTTPConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds the shared signing key and the claims every issued token
// carries. Rotating Secret invalidates all outstanding tokens.
type JWTConfig struct {
	Secret         string
	Issuer         string
	Audience       string
	AccessTokenTTL time.Duration
	Leeway         time.Duration
}

type TokenConfig struct {
	VerifyEmailTTL   time.Duration
	ResetPasswordTTL time.Duration
	ResetEmailTTL    time.Duration
	DeleteAccountTTL time.Duration
}

type PasswordConfig struct {
	Policy    PasswordPolicy
	Algorithm string
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	Timeout   time.Duration
}

type AppConfig struct {
	BaseURL    string
	MinimumAge int
}

type ThrottleConfig struct {
	MaxEmails int
	Window    time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type PasswordPolicy struct {
	MinLength         int
	RequireUppercase  bool
	RequireLowercase  bool
	RequireNumber     bool
	RequireSpecial    bool
	SpecialCharacters string
}

func (p PasswordPolicy) Validate(password string) error {
	if utf8.RuneCountInString(password) < p.MinLength {
		return fmt.Errorf("password must be at least %d characters long", p.MinLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasNumber = true
		case p.isSpecial(ch):
			hasSpecial = true
		}
	}

	var missing []string
	if p.RequireUppercase && !hasUpper {
		missing = append(missing, "uppercase letter")
	}
	if p.RequireLowercase && !hasLower {
		missing = append(missing, "lowercase letter")
	}
	if p.RequireNumber && !hasNumber {
		missing = append(missing, "number")
	}
	if p.RequireSpecial && !hasSpecial {
		missing = append(missing, "special character")
	}

	if len(missing) > 0 {
		return fmt.Errorf("password must contain at least one: %s", strings.Join(missing, ", "))
	}

	return nil
}

// isSpecial falls back to unicode punctuation and symbols when no explicit set is configured.
func (p PasswordPolicy) isSpecial(ch rune) bool {
	if p.SpecialCharacters != "" {
		return strings.ContainsRune(p.SpecialCharacters, ch)
	}
	return unicode.IsPunct(ch) || unicode.IsSymbol(ch)
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{DSN: mysqlDSN},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:         jwtSecret,
			Issuer:         getEnv("JWT_ISSUER", "ms-go-wellness"),
			Audience:       getEnv("JWT_AUDIENCE", "wellness-app"),
			AccessTokenTTL: getDurationEnv("JWT_ACCESS_TOKEN_TTL", 60*time.Minute),
			Leeway:         getDurationEnv("JWT_LEEWAY", 5*time.Minute),
		},
		Tokens: TokenConfig{
			VerifyEmailTTL:   getDurationEnv("VERIFY_EMAIL_TOKEN_TTL", 24*time.Hour),
			ResetPasswordTTL: getDurationEnv("RESET_PASSWORD_TOKEN_TTL", 30*time.Minute),
			ResetEmailTTL:    getDurationEnv("RESET_EMAIL_TOKEN_TTL", time.Hour),
			DeleteAccountTTL: getDurationEnv("DELETE_ACCOUNT_TOKEN_TTL", time.Hour),
		},
		Password: PasswordConfig{
			Policy:    loadPasswordPolicy(),
			Algorithm: getEnv("PASSWORD_HASH_ALGORITHM", "bcrypt"),
		},
		SMTP: SMTPConfig{
			Host:      os.Getenv("SMTP_SERVER"),
			Port:      getIntEnv("SMTP_PORT", 587),
			Username:  os.Getenv("SMTP_USERNAME"),
			Password:  os.Getenv("SMTP_PASSWORD"),
			FromEmail: os.Getenv("SMTP_FROM_EMAIL"),
			Timeout:   getSecondsEnv("SMTP_TIMEOUT_SECONDS", 15*time.Second),
		},
		App: AppConfig{
			BaseURL:    strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:4200"), "/"),
			MinimumAge: getIntEnv("APP_MINIMUM_AGE", 16),
		},
		Throttle: ThrottleConfig{
			MaxEmails: getIntEnv("MAIL_THROTTLE_MAX", 5),
			Window:    getDurationEnv("MAIL_THROTTLE_WINDOW", time.Hour),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports settings that would only fail later at request time.
// SMTP address and port problems are left to the mailer, which refuses to dial with them.
func (c *Config) Validate() error {
	switch c.Password.Algorithm {
	case "bcrypt", "sha256":
	default:
		return fmt.Errorf("unsupported PASSWORD_HASH_ALGORITHM %q", c.Password.Algorithm)
	}
	if c.JWT.Leeway < 0 {
		return errors.New("JWT_LEEWAY must not be negative")
	}
	if c.App.MinimumAge < 0 {
		return errors.New("APP_MINIMUM_AGE must not be negative")
	}
	if c.SMTP.FromEmail != "" {
		if _, err := mail.ParseAddress(c.SMTP.FromEmail); err != nil {
			return fmt.Errorf("invalid SMTP_FROM_EMAIL: %w", err)
		}
	}
	return nil
}

func (c *Config) DSN() string {
	return c.MySQL.DSN
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func loadPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:         getIntEnv("PASSWORD_MIN_LENGTH", 12),
		RequireUppercase:  getBoolEnv("PASSWORD_REQUIRE_UPPERCASE", true),
		RequireLowercase:  getBoolEnv("PASSWORD_REQUIRE_LOWERCASE", true),
		RequireNumber:     getBoolEnv("PASSWORD_REQUIRE_NUMBER", false),
		RequireSpecial:    getBoolEnv("PASSWORD_REQUIRE_SPECIAL", true),
		SpecialCharacters: getEnv("PASSWORD_SPECIAL_CHARACTERS", DefaultSpecialCharacters),
	}
}
