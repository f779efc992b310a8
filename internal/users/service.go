package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/Saurabhrajput1234/BookMySeat/internal/auth"
	"github.com/Saurabhrajput1234/BookMySeat/internal/logger"
	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
)

type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

// CodeCache stores email verification codes with a TTL.
type CodeCache interface {
	StoreCode(ctx context.Context, email, code string) error
	ConsumeCode(ctx context.Context, email, code string) (bool, error)
}

// CodeMailer delivers verification codes. Best-effort: registration
// succeeds even when the mail bounces, the user can request a resend.
type CodeMailer interface {
	SendVerificationCode(to, code string) error
}

type Service struct {
	store   Store
	issuer  *auth.TokenIssuer
	codes   CodeCache
	mailer  CodeMailer
	newCode func() string
	logger  *logger.Logger
}

func NewService(store Store, issuer *auth.TokenIssuer, codes CodeCache, mailer CodeMailer, newCode func() string, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		issuer:  issuer,
		codes:   codes,
		mailer:  mailer,
		newCode: newCode,
		logger:  log,
	}
}

// Register creates an account, stores a verification code and emails it.
// Every self-registered account starts as an active, unverified User.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("AUTH", fmt.Sprintf("registered user id=%d email=%s", user.ID, user.Email))

	code := s.newCode()
	if err := s.codes.StoreCode(ctx, user.Email, code); err != nil {
		s.logger.Error("AUTH", fmt.Sprintf("failed to store verification code for %s: %v", user.Email, err))
		return user, nil
	}
	if s.mailer != nil {
		if err := s.mailer.SendVerificationCode(user.Email, code); err != nil {
			s.logger.Warn("EMAIL", fmt.Sprintf("verification email for %s failed: %v", user.Email, err))
		}
	}
	return user, nil
}

// VerifyEmail redeems a verification code. The cache consumes the code
// atomically, so a code can only ever be redeemed once.
func (s *Service) VerifyEmail(ctx context.Context, req models.VerifyEmailRequest) error {
	ok, err := s.codes.ConsumeCode(ctx, req.Email, req.Code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCode
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	user.EmailVerified = true
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return err
	}
	s.logger.Info("AUTH", fmt.Sprintf("email verified for user id=%d", user.ID))
	return nil
}

// ResendCode issues a fresh verification code for an unverified account.
func (s *Service) ResendCode(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}

	code := s.newCode()
	if err := s.codes.StoreCode(ctx, user.Email, code); err != nil {
		return err
	}
	if s.mailer != nil {
		if err := s.mailer.SendVerificationCode(user.Email, code); err != nil {
			s.logger.Warn("EMAIL", fmt.Sprintf("verification email for %s failed: %v", user.Email, err))
		}
	}
	return nil
}

// Login checks credentials and issues a JWT. Failures are deliberately
// indistinguishable between unknown email and wrong password.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	token, err := s.issuer.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	s.logger.Info("AUTH", fmt.Sprintf("login user id=%d", user.ID))
	return &models.LoginResponse{Token: token, Role: user.Role, Name: user.Name}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// SetRole changes a user's role. The raw string is validated against the
// closed enumeration before anything touches the store.
func (s *Service) SetRole(ctx context.Context, id int64, rawRole string) (*models.User, error) {
	role, ok := models.ParseRole(rawRole)
	if !ok {
		return nil, fmt.Errorf("invalid role %q", rawRole)
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("AUTH", fmt.Sprintf("user id=%d role set to %s", id, role))
	return user, nil
}

// SetActive enables or disables an account.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("AUTH", fmt.Sprintf("user id=%d active=%t", id, active))
	return user, nil
}
