package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Kamey12/Apex-Inventory-System/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, fmt.Errorf("user with username %s: %w", username, translate(err))
	}
	return &user, nil
}

// GetByResetToken retrieves the user holding an unexpired reset token hash.
func (r *GORMUserRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("reset_password_token = ? AND reset_password_expire > ?", tokenHash, now).
		First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("user with reset token: %w", translate(err))
	}
	return &user, nil
}

// Update saves every column of an existing user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(user).Select("*").Omit("created_at").Updates(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", user.ID, ErrNotFound)
	}
	return nil
}

// List returns every user ordered by username.
func (r *GORMUserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CountByRole counts the users holding role.
func (r *GORMUserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
