package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"storyhub/internal/core/auth"
	"storyhub/internal/domain"
	"storyhub/pkg/utils"
)

type AuthService struct {
	users domain.UserRepository
	jwter *auth.JWTer
}

func NewAuthService(users domain.UserRepository, jwter *auth.JWTer) *AuthService {
	return &AuthService{users: users, jwter: jwter}
}

type Credentials struct {
	Username string
	Password string
	Email    string
}

// Register 新用户永远是普通角色；用户名冲突返回 ErrConflict
func (s *AuthService) Register(ctx context.Context, in Credentials) (string, *domain.User, error) {
	username := strings.TrimSpace(in.Username)

	// 先查一次给出友好错误，唯一索引兜底并发场景
	if existing, err := s.users.FindByUsername(ctx, username); err != nil {
		return "", nil, err
	} else if existing != nil {
		return "", nil, domain.ErrConflict
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Username:     username,
		PasswordHash: utils.HashPassword(in.Password),
		Email:        strings.TrimSpace(in.Email),
		IsAdmin:      false,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", nil, err
	}

	tok, err := s.jwter.Issue(u.Username)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// Login 用户不存在与密码错误不可区分，一律 ErrInvalidCredentials
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}
	tok, err := s.jwter.Issue(u.Username)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// Resolve token 主体 → 在库用户；用户已不存在同样视作未认证
func (s *AuthService) Resolve(ctx context.Context, tokenStr string) (*domain.User, error) {
	claims, err := s.jwter.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, auth.ErrTokenInvalid
	}
	return u, nil
}

// EnsureSeedAdmin 幂等播种唯一的管理员账号
func (s *AuthService) EnsureSeedAdmin(ctx context.Context, username, password, email string) (created bool, err error) {
	if username == "" || password == "" {
		return false, nil
	}
	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Username:     username,
		PasswordHash: utils.HashPassword(password),
		Email:        email,
		IsAdmin:      true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return false, nil // 并发启动时另一实例已播种
		}
		return false, err
	}
	return true, nil
}
