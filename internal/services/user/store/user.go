// Package store persists users for either deployment.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kasir-system/internal/database"
	"kasir-system/internal/database/models"

	"gorm.io/gorm"
)

type ListFilter struct {
	Role   models.Role
	Offset int
	Limit  int
}

// Store returns gorm.ErrRecordNotFound for unknown ids and
// gorm.ErrDuplicatedKey when the email is taken.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, filter ListFilter) ([]models.User, int64, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Cafe").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) List(ctx context.Context, filter ListFilter) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	var users []models.User
	if err := query.Order("id ASC").Offset(filter.Offset).Limit(filter.Limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (s *GormStore) Create(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *GormStore) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	err := s.db.WithContext(ctx).Model(user).
		Select("name", "email", "password", "role", "cafe_id", "updated_at").
		Updates(user).Error
	if err != nil {
		return translate(err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		if database.IsForeignKeyViolation(res.Error) {
			return database.ErrReferenced
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *GormStore) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}

func translate(err error) error {
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", gorm.ErrDuplicatedKey, err)
	}
	return err
}
