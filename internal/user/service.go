package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motormarket/motormarket/internal/common/apperr"
	"github.com/motormarket/motormarket/internal/common/auth"
	"github.com/motormarket/motormarket/internal/common/config"
)

// Service covers account use cases without depending on the transport.
type Service struct {
	repo    *Repo
	authCfg config.AuthConfig
}

func NewService(repo *Repo, authCfg config.AuthConfig) *Service {
	return &Service{repo: repo, authCfg: authCfg}
}

// RegisterInput is the registration DTO.
type RegisterInput struct {
	Username string
	Email    string
	Phone    string
	Password string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || in.Password == "" {
		return nil, apperr.InvalidArgument("username/password required")
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, apperr.AlreadyExists("username already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err)
	}
	if email != "" {
		if _, err := s.repo.FindByEmail(ctx, email); err == nil {
			return nil, apperr.AlreadyExists("email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal(err)
		}
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Roles:        RolesJoin([]string{RoleBuyer}),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}

// LoginResult carries the issued token alongside the account.
type LoginResult struct {
	User        *User
	AccessToken string
	ExpiresAt   time.Time
}

func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.InvalidArgument("username/password required")
	}

	u, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthenticated("invalid credentials")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, apperr.Unauthenticated("invalid credentials")
	}
	if u.Banned {
		return nil, apperr.Unauthenticated("account banned: %s", u.BanReason)
	}

	ttl := time.Duration(s.authCfg.TokenTTLHour) * time.Hour
	token, exp, err := auth.GenerateAccessToken(s.authCfg, u.ID, u.RolesSlice(), ttl)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &LoginResult{User: u, AccessToken: token, ExpiresAt: exp}, nil
}

// Authenticate verifies credentials without issuing a token. Used by the
// admin panel cookie login.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.InvalidArgument("username/password required")
	}
	u, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthenticated("invalid credentials")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, apperr.Unauthenticated("invalid credentials")
	}
	if u.Banned {
		return nil, apperr.Unauthenticated("account banned: %s", u.BanReason)
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.InvalidArgument("id required")
	}
	u, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]User, int64, error) {
	users, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return users, total, nil
}

// Ban flags the account; a banned user cannot log in.
func (s *Service) Ban(ctx context.Context, id, reason string) (*User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.HasRole(RoleAdmin) {
		return nil, apperr.PermissionDenied("cannot ban an admin account")
	}
	u.Banned = true
	u.BanReason = strings.TrimSpace(reason)
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}

func (s *Service) Unban(ctx context.Context, id string) (*User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Banned = false
	u.BanReason = ""
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}

// PromoteToSeller grants the seller role. Called when a vendor application
// is approved.
func (s *Service) PromoteToSeller(ctx context.Context, id string) (*User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.HasRole(RoleSeller) {
		return u, nil
	}
	u.Roles = AddRole(u.Roles, RoleSeller)
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}

func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
