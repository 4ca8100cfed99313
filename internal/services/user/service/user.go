// Package service implements authentication and user management shared by
// the cafe and farma deployments.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"kasir-system/internal/apperr"
	"kasir-system/internal/database"
	"kasir-system/internal/database/models"
	"kasir-system/internal/pkg/logging"
	"kasir-system/internal/services/user/store"
	"kasir-system/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type TokenIssuer interface {
	GenerateToken(user models.User) (string, *utils.Claims, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

// CafeLookup reports whether an outlet exists. Only the cafe deployment sets it.
type CafeLookup func(ctx context.Context, id int64) (bool, error)

type LoginResult struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresAt time.Time   `json:"expires_at"`
	Role      models.Role `json:"role"`
	User      models.User `json:"user"`
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
	CafeID   *int64
}

type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *models.Role
	CafeID   *int64
}

type Service struct {
	store   store.Store
	tokens  TokenIssuer
	revoker TokenRevoker
	roles   []models.Role
	cafes   CafeLookup
	now     func() time.Time
}

func NewService(st store.Store, tokens TokenIssuer, revoker TokenRevoker, roles []models.Role) *Service {
	return &Service{
		store:   st,
		tokens:  tokens,
		revoker: revoker,
		roles:   roles,
		now:     time.Now,
	}
}

func (s *Service) WithCafeLookup(fn CafeLookup) *Service {
	s.cafes = fn
	return s
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.store.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthenticated("Login gagal")
		}
		return nil, apperr.Internal("database error", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.Unauthenticated("Login gagal")
	}

	token, claims, err := s.tokens.GenerateToken(*user)
	if err != nil {
		return nil, apperr.Internal("error generating token", err)
	}

	now := s.now()
	if err := s.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		logging.FromContext(ctx).Warn("failed to record last login", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	user.LastLogin = &now

	return &LoginResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: claims.ExpiresAt.Time,
		Role:      user.Role,
		User:      *user,
	}, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, claims *utils.Claims) error {
	if claims == nil {
		return apperr.Unauthenticated("Unauthenticated.")
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.TTLLeft(s.now())); err != nil {
		return apperr.Internal("failed to revoke token", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User with ID %d not found", id)
		}
		return nil, apperr.Internal("failed to get user", err)
	}
	return user, nil
}

func (s *Service) List(ctx context.Context, role models.Role, offset, limit int) ([]models.User, int64, error) {
	if role != "" && !models.HasRole(s.roles, role) {
		return nil, 0, apperr.Field("role", "The selected role is invalid.")
	}
	users, total, err := s.store.List(ctx, store.ListFilter{Role: role, Offset: offset, Limit: limit})
	if err != nil {
		return nil, 0, apperr.Internal("failed to list users", err)
	}
	return users, total, nil
}

func (s *Service) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if err := s.checkRole(in.Role); err != nil {
		return nil, err
	}
	if err := s.checkCafe(ctx, in.CafeID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: string(hash),
		Role:     in.Role,
		CafeID:   in.CafeID,
	}
	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("The email has already been taken.")
		}
		return nil, apperr.Internal("failed to create user", err)
	}
	return user, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateUserInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Role != nil {
		if err := s.checkRole(*in.Role); err != nil {
			return nil, err
		}
		user.Role = *in.Role
	}
	if in.CafeID != nil {
		if err := s.checkCafe(ctx, in.CafeID); err != nil {
			return nil, err
		}
		user.CafeID = in.CafeID
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperr.Internal("failed to hash password", err)
		}
		user.Password = string(hash)
	}

	user.Cafe = nil
	if err := s.store.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("The email has already been taken.")
		}
		return nil, apperr.Internal("failed to update user", err)
	}
	return user, nil
}

// Delete removes a user. Callers cannot delete their own account.
func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	if id == actorID {
		return apperr.Rule("Tidak dapat menghapus akun sendiri")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("User with ID %d not found", id)
		}
		if errors.Is(err, database.ErrReferenced) {
			return apperr.Rule("User masih memiliki transaksi dan tidak dapat dihapus")
		}
		return apperr.Internal("failed to delete user", err)
	}
	return nil
}

func (s *Service) checkRole(role models.Role) error {
	if role == "" {
		return apperr.Field("role", "The role field is required.")
	}
	if !models.HasRole(s.roles, role) {
		return apperr.Field("role", "The selected role is invalid.")
	}
	return nil
}

func (s *Service) checkCafe(ctx context.Context, cafeID *int64) error {
	if cafeID == nil {
		return nil
	}
	if s.cafes == nil {
		return apperr.Field("cafe_id", "The cafe_id field is not supported.")
	}
	ok, err := s.cafes(ctx, *cafeID)
	if err != nil {
		return apperr.Internal("failed to check cafe", err)
	}
	if !ok {
		return apperr.Field("cafe_id", "The selected cafe_id is invalid.")
	}
	return nil
}
