package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Kamey12/Apex-Inventory-System/internal/models"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

// Create adds a user; usernames are unique.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return fmt.Errorf("failed to create user: %w", ErrDuplicate)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

// GetByUsername returns a user by username.
func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username },
		fmt.Sprintf("user with username %s", username))
}

// GetByResetToken returns the user holding an unexpired reset token hash.
func (r *MemoryUserRepository) GetByResetToken(_ context.Context, tokenHash string, now time.Time) (*models.User, error) {
	return r.find(func(u models.User) bool {
		return tokenHash != "" && u.ResetPasswordToken == tokenHash &&
			u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(now)
	}, "user with reset token")
}

// Update replaces a stored user.
func (r *MemoryUserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user with ID %s: %w", user.ID, ErrNotFound)
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

// List returns users ordered by username.
func (r *MemoryUserRepository) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// CountByRole counts the users holding role.
func (r *MemoryUserRepository) CountByRole(_ context.Context, role models.Role) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *MemoryUserRepository) find(match func(models.User) bool, what string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
}
