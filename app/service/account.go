package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-wellness/app/entity"
	"github.com/vibast-solutions/ms-go-wellness/app/mailer"
	"github.com/vibast-solutions/ms-go-wellness/app/password"
	"github.com/vibast-solutions/ms-go-wellness/app/repository"
	"github.com/vibast-solutions/ms-go-wellness/app/throttle"
	"github.com/vibast-solutions/ms-go-wellness/app/token"
	"github.com/vibast-solutions/ms-go-wellness/app/types"
	"github.com/vibast-solutions/ms-go-wellness/config"

	"github.com/sirupsen/logrus"
)

type userRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByCanonicalEmail(ctx context.Context, canonicalEmail string) (*entity.User, error)
	FindByID(ctx context.Context, id uint64) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}

type profileRepository interface {
	FindByUsername(ctx context.Context, username string) (*entity.Profile, error)
}

type tokenRepository interface {
	Create(ctx context.Context, kind entity.TokenKind, record *entity.TokenRecord) error
	FindByTokenID(ctx context.Context, kind entity.TokenKind, tokenID string) (*entity.TokenRecord, error)
	SupersedeForUser(ctx context.Context, kind entity.TokenKind, userID uint64) error
}

type tokenIssuer interface {
	Issue(subject token.Subject, purpose string, ttl time.Duration) (*token.Issued, error)
	Validate(raw, purpose string) (*token.Claims, error)
}

type mailLimiter interface {
	Allow(ctx context.Context, key string) error
}

type AccountService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*types.RegisterResponse, error)
	VerifyEmail(ctx context.Context, req *types.TokenRequest) (*types.EmailResponse, error)
	ResendVerification(ctx context.Context, req *types.EmailRequest) error
	Login(ctx context.Context, req *types.LoginRequest) (*types.LoginResponse, error)
	ChangePassword(ctx context.Context, userID uint64, req *types.ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req *types.EmailRequest) error
	ValidateResetPasswordToken(ctx context.Context, req *types.TokenRequest) (*types.EmailResponse, error)
	ResetPassword(ctx context.Context, req *types.ResetPasswordRequest) error
	RequestEmailChange(ctx context.Context, userID uint64, req *types.ChangeEmailRequest) error
	ConfirmEmailChange(ctx context.Context, req *types.TokenRequest) (*types.EmailResponse, error)
	CancelEmailChange(ctx context.Context, req *types.TokenRequest) error
	RequestAccountDeletion(ctx context.Context, userID uint64) error
	ConfirmAccountDeletion(ctx context.Context, req *types.TokenRequest) error
	CancelAccountDeletion(ctx context.Context, req *types.TokenRequest) error
	ValidateAccessToken(raw string) (*token.Claims, error)
}

type AccountServiceOption func(*accountService)

type accountService struct {
	db          *sql.DB
	userRepo    userRepository
	profileRepo profileRepository
	tokenRepo   tokenRepository
	auditRepo   auditLogWriter
	issuer      tokenIssuer
	mailer      mailer.Mailer
	cfg         *config.Config
	hasher      password.Hasher
	limiter     mailLimiter
	now         func() time.Time
}

func NewAccountService(
	db *sql.DB,
	userRepo userRepository,
	profileRepo profileRepository,
	tokenRepo tokenRepository,
	auditRepo auditLogWriter,
	issuer tokenIssuer,
	mail mailer.Mailer,
	cfg *config.Config,
	opts ...AccountServiceOption,
) AccountService {
	svc := &accountService{
		db:          db,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		tokenRepo:   tokenRepo,
		auditRepo:   auditRepo,
		issuer:      issuer,
		mailer:      mail,
		cfg:         cfg,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.hasher == nil {
		hasher, err := password.New(cfg.Password.Algorithm)
		if err != nil {
			logrus.WithError(err).Warn("Falling back to bcrypt password hashing")
			hasher, _ = password.New(password.AlgorithmBcrypt)
		}
		svc.hasher = hasher
	}
	return svc
}

func WithHasher(hasher password.Hasher) AccountServiceOption {
	return func(s *accountService) {
		if hasher != nil {
			s.hasher = hasher
		}
	}
}

// WithMailLimiter caps lifecycle emails per address. A nil *throttle.Limiter disables the cap.
func WithMailLimiter(limiter *throttle.Limiter) AccountServiceOption {
	return func(s *accountService) {
		if limiter != nil {
			s.limiter = limiter
		}
	}
}

func WithClock(now func() time.Time) AccountServiceOption {
	return func(s *accountService) {
		if now != nil {
			s.now = now
		}
	}
}

func (s *accountService) audit(ctx context.Context, action string, userID uint64, outcome error) {
	recordAudit(ctx, s.auditRepo, s.now(), action, userID, outcome)
}

func (s *accountService) Register(ctx context.Context, req *types.RegisterRequest) (resp *types.RegisterResponse, err error) {
	var userID uint64
	defer func() { s.audit(ctx, ActionRegister, userID, err) }()

	if err = req.Validate(); err != nil {
		return nil, invalidInput(err)
	}
	birthDate, err := req.ParsedBirthDate()
	if err != nil {
		return nil, invalidInput(err)
	}

	now := s.now()
	profile := &entity.Profile{
		Username:         req.Username,
		BirthDate:        birthDate,
		Height:           req.Height,
		Weight:           req.Weight,
		Gender:           req.Gender,
		HasHeartProblems: req.HeartProblems,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if profile.AgeAt(now) < s.cfg.App.MinimumAge {
		return nil, ErrUnderage
	}
	if err = s.cfg.Password.Policy.Validate(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	canonicalEmail := CanonicalizeEmail(req.Email)
	existing, err := s.userRepo.FindByCanonicalEmail(ctx, canonicalEmail)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	existingProfile, err := s.profileRepo.FindByUsername(ctx, profile.Username)
	if err != nil {
		return nil, err
	}
	if existingProfile != nil {
		return nil, ErrUsernameTaken
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Email:           req.Email,
		CanonicalEmail:  canonicalEmail,
		PasswordHash:    hashed,
		Type:            entity.UserTypeStandard,
		IsEmailVerified: false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err = repository.NewProfileRepository(tx).Create(ctx, profile); err != nil {
		return nil, duplicateAs(err, ErrUsernameTaken)
	}
	user.ProfileID = profile.ID
	if err = repository.NewUserRepository(tx).Create(ctx, user); err != nil {
		return nil, duplicateAs(err, ErrEmailTaken)
	}
	issued, err := s.issueToken(ctx, repository.NewTokenRepository(tx), user, entity.TokenKindVerifyEmail, "")
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, duplicateAs(err, ErrEmailTaken)
	}
	userID = user.ID

	// The account stays persisted and unverified when delivery fails; resend recovers it.
	if err = s.sendMail(ctx, user.Email, mailer.TemplateVerifyEmail, mailer.Data{
		Email:     user.Email,
		Link:      s.link(pathVerifyEmail, issued.Token),
		ExpiresAt: issued.ExpiresAt,
	}); err != nil {
		return nil, err
	}

	return &types.RegisterResponse{
		Message: "Registration successful. Please check your email to verify your account.",
		Token:   issued.Token,
		User:    types.NewUserResponse(user, profile),
	}, nil
}

func (s *accountService) VerifyEmail(ctx context.Context, req *types.TokenRequest) (resp *types.EmailResponse, err error) {
	var userID uint64
	defer func() { s.audit(ctx, ActionVerifyEmail, userID, err) }()

	claims, err := s.parseToken(req, entity.TokenKindVerifyEmail)
	if err != nil {
		return nil, err
	}
	userID = claims.UserID

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txUserRepo := repository.NewUserRepository(tx)
	user, err := txUserRepo.FindByIDForUpdate(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	if user.IsEmailVerified {
		return nil, ErrEmailAlreadyVerified
	}

	if _, err = s.consumeRecord(ctx, repository.NewTokenRepository(tx), claims, entity.TokenKindVerifyEmail); err != nil {
		return nil, err
	}

	user.IsEmailVerified = true
	if err = txUserRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &types.EmailResponse{Message: "Email verified successfully.", Email: user.Email}, nil
}

func (s *accountService) ResendVerification(ctx context.Context, req *types.EmailRequest) (err error) {
	var userID uint64
	defer func() { s.audit(ctx, ActionResendVerification, userID, err) }()

	if err = req.Validate(); err != nil {
		return invalidInput(err)
	}

	user, err := s.userRepo.FindByCanonicalEmail(ctx, CanonicalizeEmail(req.Email))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	userID = user.ID
	if user.IsEmailVerified {
		return ErrEmailAlreadyVerified
	}
	if err = s.allowMail(ctx, user.CanonicalEmail); err != nil {
		return err
	}

	if err = s.tokenRepo.SupersedeForUser(ctx, entity.TokenKindVerifyEmail, user.ID); err != nil {
		return err
	}
	issued, err := s.issueToken(ctx, s.tokenRepo, user, entity.TokenKindVerifyEmail, "")
	if err != nil {
		return err
	}

	return s.sendMail(ctx, user.Email, mailer.TemplateVerifyEmail, mailer.Data{
		Email:     user.Email,
		Link:      s.link(pathVerifyEmail, issued.Token),
		ExpiresAt: issued.ExpiresAt,
	})
}

func (s *accountService) Login(ctx context.Context, req *types.LoginRequest) (resp *types.LoginResponse, err error) {
	var userID uint64
	defer func() { s.audit(ctx, ActionLogin, userID, err) }()

	if err = req.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	user, err := s.userRepo.FindByCanonicalEmail(ctx, CanonicalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	userID = user.ID

	if !s.hasher.Matches(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}

	issued, err := s.issuer.Issue(subjectOf(user), token.PurposeAccess, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	return &types.LoginResponse{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.cfg.JWT.AccessTokenTTL.Seconds()),
	}, nil
}

func (s *accountService) ChangePassword(ctx context.Context, userID uint64, req *types.ChangePasswordRequest) (err error) {
	defer func() { s.audit(ctx, ActionChangePassword, userID, err) }()

	if err = req.Validate(); err != nil {
		return invalidInput(err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !s.hasher.Matches(user.PasswordHash, req.OldPassword) {
		return ErrPasswordMismatch
	}
	if err = s.cfg.Password.Policy.Validate(req.NewPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}
	if s.hasher.Matches(user.PasswordHash, req.NewPassword) {
		return ErrSamePassword
	}

	hashed, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	return s.userRepo.Update(ctx, user)
}

// ValidateAccessToken is used by the bearer middleware. It is not audited.
func (s *accountService) ValidateAccessToken(raw string) (*token.Claims, error) {
	claims, err := s.issuer.Validate(raw, token.PurposeAccess)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	return claims, nil
}
