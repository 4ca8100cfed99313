package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"kasir-system/internal/database/models"

	"gorm.io/gorm"
)

// MemoryStore is an in-process Store used by tests and local tooling.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]models.User
}

func NewMemoryStore(seed ...models.User) *MemoryStore {
	s := &MemoryStore{users: make(map[int64]models.User)}
	for _, u := range seed {
		u := u
		_ = s.Create(context.Background(), &u)
	}
	return s
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (s *MemoryStore) List(_ context.Context, filter ListFilter) ([]models.User, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []models.User
	for _, u := range s.users {
		if filter.Role == "" || u.Role == filter.Role {
			all = append(all, u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	if filter.Offset >= len(all) {
		return []models.User{}, total, nil
	}
	end := len(all)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return all[filter.Offset:end], total, nil
}

func (s *MemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(user.Email, 0) {
		return gorm.ErrDuplicatedKey
	}
	s.nextID++
	user.ID = s.nextID
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if s.emailTaken(user.Email, user.ID) {
		return gorm.ErrDuplicatedKey
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.LastLogin = &at
	s.users[id] = u
	return nil
}

func (s *MemoryStore) emailTaken(email string, except int64) bool {
	for id, u := range s.users {
		if id != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}
