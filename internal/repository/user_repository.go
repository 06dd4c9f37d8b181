package repository

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/spec-kit/support-desk/internal/domain"
)

// ErrUserNotFound is returned when a user id or email does not resolve.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines read access to the user directory.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type memoryUserRepository struct {
	mu    sync.RWMutex
	users []domain.User
}

// NewMemoryUserRepository returns a directory over a fixed set of users.
func NewMemoryUserRepository(users []domain.User) UserRepository {
	copied := make([]domain.User, len(users))
	copy(copied, users)
	return &memoryUserRepository{users: copied}
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if r.users[i].ID == id {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if r.users[i].Email == email {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.User, len(r.users))
	copy(result, r.users)
	return result, nil
}
