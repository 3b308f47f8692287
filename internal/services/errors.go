package services

import "errors"

// Errors returned by the services. Handlers map them onto HTTP statuses.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserNotFound       = errors.New("no account found with that username")
	ErrInvalidRole        = errors.New("role must be admin or staff")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrPasswordMismatch   = errors.New("passwords do not match")

	ErrProductNotFound   = errors.New("product not found")
	ErrSKUTaken          = errors.New("a product with this sku already exists")
	ErrInvalidProduct    = errors.New("price, quantity and threshold must not be negative")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInsufficientStock = errors.New("not enough stock")
)
