package repositories

import (
	"context"
	"time"

	"github.com/Kamey12/Apex-Inventory-System/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetByResetToken returns the user holding tokenHash whose reset window is still open at now.
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}
