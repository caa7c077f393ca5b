package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// ProfileHeader names the client profile a remembered session belongs to.
const ProfileHeader = "X-Session-Profile"

const defaultProfile = "default"

// UsersHandler exposes account and sign-in endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// SignUp handles POST /auth/signup.
func (h *UsersHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	res, err := h.auth.SignUp(c.UserContext(), profileOf(c), req.Email, req.Password, req.DisplayName)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(authPayload(res))
}

// SignIn handles POST /auth/signin.
func (h *UsersHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	res, err := h.auth.SignIn(c.UserContext(), profileOf(c), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(authPayload(res))
}

// SignOut handles POST /auth/signout.
func (h *UsersHandler) SignOut(c *fiber.Ctx) error {
	if err := h.auth.SignOut(c.UserContext(), profileOf(c)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	account, err := h.auth.Account(c.UserContext(), caller)
	if err != nil {
		return err
	}

	data := fiber.Map{"user": dto.NewUserResponse(caller, account.Role)}
	sess, err := h.auth.LastSession(c.UserContext(), profileOf(c))
	switch {
	case err == nil:
		data["session"] = dto.SessionResponse{Email: sess.Email, Provider: string(sess.Provider)}
	case errors.Is(err, domain.ErrNotFound):
		data["session"] = nil
	default:
		return err
	}
	return c.JSON(fiber.Map{"data": data})
}

// ChangePassword handles POST /auth/password.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current_password and new_password required", nil)
	}

	if err := h.auth.UpdatePassword(c.UserContext(), caller, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// UpdateProfile handles PATCH /auth/profile.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	update := service.ProfileUpdate{DisplayName: req.DisplayName}
	if req.Role != nil {
		role := domain.UserRole(strings.ToUpper(strings.TrimSpace(*req.Role)))
		if role != domain.UserRoleOperator && role != domain.UserRoleAdministrator {
			return apperrors.NewValidationError("unknown role", map[string]any{
				"allowed": []domain.UserRole{domain.UserRoleOperator, domain.UserRoleAdministrator},
			})
		}
		update.Role = &role
	}

	account, err := h.auth.UpdateProfile(c.UserContext(), caller, update)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.NewUserResponse(account.Identity(), account.Role)}})
}

func profileOf(c *fiber.Ctx) string {
	if p := strings.TrimSpace(c.Get(ProfileHeader)); p != "" {
		return p
	}
	return defaultProfile
}

func authPayload(res *service.AuthResult) fiber.Map {
	return fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(res.Identity, res.Role),
			"auth": dto.AuthResponse{Token: res.Token, ExpiresAt: res.ExpiresAt},
		},
	}
}
