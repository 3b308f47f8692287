package handlers

import (
	"github.com/Kamey12/Apex-Inventory-System/internal/middleware"
	"github.com/Kamey12/Apex-Inventory-System/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles HTTP requests for authentication and user administration.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
	}
}

// RegisterRoutes registers the authentication routes.
// protect must authenticate the request; loginLimiter guards the login route and may be nil.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, protect, loginLimiter fiber.Handler) {
	authRoutes := router.Group("/auth")

	if loginLimiter != nil {
		authRoutes.Post("/login", loginLimiter, h.HandleLogin)
	} else {
		authRoutes.Post("/login", h.HandleLogin)
	}
	authRoutes.Post("/forgot-password", h.HandleForgotPassword)
	authRoutes.Put("/reset-password/:token", h.HandleResetPassword)

	authRoutes.Post("/register", protect, middleware.AdminOnly(), h.HandleRegister)
	authRoutes.Get("/users", protect, middleware.AdminOnly(), h.HandleListUsers)
}

// RegisterRequest represents the request body for creating a user.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin staff"`
}

// HandleRegister creates a user. Admin only.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	user, err := h.authService.RegisterUser(c.UserContext(), req.Username, req.Password, req.Role)
	if err != nil {
		return respondError(c, err, "register user")
	}

	log.Info().Str("username", user.Username).Str("role", string(user.Role)).
		Str("by", middleware.CurrentSession(c).Username).Msg("user registered")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	token, user, err := h.authService.LoginUser(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err, "login")
	}

	return c.JSON(fiber.Map{
		"message":  "Login successful",
		"token":    token,
		"role":     user.Role,
		"username": user.Username,
	})
}

// HandleListUsers lists every account. Admin only.
func (h *AuthHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.authService.ListUsers(c.UserContext())
	if err != nil {
		return respondError(c, err, "list users")
	}
	return c.JSON(users)
}

// ForgotPasswordRequest represents the request body for starting a password reset.
type ForgotPasswordRequest struct {
	Username string `json:"username" validate:"required"`
}

// HandleForgotPassword issues a reset token and returns the path that redeems it.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	resetURL, err := h.authService.RequestPasswordReset(c.UserContext(), req.Username)
	if err != nil {
		return respondError(c, err, "forgot password")
	}

	return c.JSON(fiber.Map{
		"message":  "Reset link generated",
		"resetUrl": resetURL,
	})
}

// ResetPasswordRequest represents the request body for redeeming a reset token.
type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword"`
}

// HandleResetPassword sets a new password if the token in the path is valid and unexpired.
func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	if err := h.authService.ResetPassword(c.UserContext(), c.Params("token"), req.Password, req.ConfirmPassword); err != nil {
		return respondError(c, err, "reset password")
	}

	return c.JSON(fiber.Map{
		"message": "Password updated successfully",
	})
}
