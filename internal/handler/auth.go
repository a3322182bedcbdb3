package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/goviettour/booking-backend/internal/config"
	"github.com/goviettour/booking-backend/internal/repository"
	"github.com/goviettour/booking-backend/internal/utils"
)

// AuthHandler serves staff authentication.  There is no self-service
// registration: accounts are provisioned directly in the database, so the
// surface is just login plus a whoami endpoint for the console.
type AuthHandler struct {
	Cfg    config.Config
	Admins *repository.AdminRepo
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(cfg config.Config, admins *repository.AdminRepo) *AuthHandler {
	if admins == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Admins: admins}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
	Email   string    `json:"email"`
	Role    string    `json:"role"`
}

// Login handles POST /v1/auth/login.  Unknown email and wrong password
// return the same response so the endpoint does not leak which staff
// accounts exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	admin, err := h.Admins.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to look up account"})
	}
	if !utils.VerifyPassword(admin.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, admin.ID, admin.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
	}
	return c.JSON(http.StatusOK, loginResp{
		Token:   access.Token,
		Expires: access.Exp,
		Email:   admin.Email,
		Role:    admin.Role,
	})
}

// Me handles GET /v1/auth/me.  It reports the account behind the bearer
// token so the console can restore a session after reload.
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token subject"})
	}
	role, _ := c.Get("role").(string)
	return c.JSON(http.StatusOK, echo.Map{"id": id, "role": role})
}
