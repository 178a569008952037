package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusmind/campusmind/server/auth"
	"github.com/campusmind/campusmind/server/middleware"
	"github.com/campusmind/campusmind/store"
)

type signUpRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID         int32  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        userResponse `json:"user"`
}

func toUserResponse(user *store.User) userResponse {
	return userResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       string(user.Role),
		Department: user.Department,
	}
}

// SignUp registers a new account and returns a signed token.
func (s *APIV1Service) SignUp(c echo.Context) error {
	request := &signUpRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := store.ValidateUserName(request.Name); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := store.ValidateEmail(request.Email); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(request.Password) < 8 {
		return echo.NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
	}
	role := store.UserRole(request.Role)
	if request.Role == "" {
		role = store.UserRoleUser
	}
	if err := store.ValidateUserRole(role); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	passwordHash, err := auth.HashPassword(request.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to hash password")
	}

	user, err := s.store.CreateUser(c.Request().Context(), &store.User{
		Name:         request.Name,
		Email:        request.Email,
		PasswordHash: passwordHash,
		Role:         role,
		Department:   request.Department,
		IsActive:     true,
	})
	if err != nil {
		if _, ok := store.IsDuplicate(err); ok {
			return echo.NewHTTPError(http.StatusBadRequest, "email already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create account")
	}

	return s.issueToken(c, http.StatusCreated, user)
}

// LogIn verifies credentials and returns a signed token.
func (s *APIV1Service) LogIn(c echo.Context) error {
	request := &signInRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	user, err := s.store.GetUser(c.Request().Context(), &store.FindUser{Email: &request.Email})
	if err != nil || !auth.VerifyPassword(user.PasswordHash, request.Password) {
		// Single message for both cases so probing cannot tell them apart.
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if !user.IsActive {
		return echo.NewHTTPError(http.StatusUnauthorized, "account disabled")
	}

	now := time.Now().Unix()
	if _, err := s.store.UpdateUser(c.Request().Context(), &store.UpdateUser{ID: user.ID, LastLoginTs: &now}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record sign-in")
	}
	return s.issueToken(c, http.StatusOK, user)
}

// Me returns the authenticated account.
func (s *APIV1Service) Me(c echo.Context) error {
	user := middleware.UserFromContext(c)
	return c.JSON(http.StatusOK, toUserResponse(user))
}

type updateMeRequest struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
	Password   *string `json:"password"`
}

// UpdateMe changes the authenticated account's own profile fields.
func (s *APIV1Service) UpdateMe(c echo.Context) error {
	request := &updateMeRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	user := middleware.UserFromContext(c)
	update := &store.UpdateUser{ID: user.ID}
	if request.Name != nil {
		if err := store.ValidateUserName(*request.Name); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		update.Name = request.Name
	}
	if request.Department != nil {
		update.Department = request.Department
	}
	if request.Password != nil {
		if len(*request.Password) < 8 {
			return echo.NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
		}
		passwordHash, err := auth.HashPassword(*request.Password)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to hash password")
		}
		update.PasswordHash = &passwordHash
	}

	updated, err := s.store.UpdateUser(c.Request().Context(), update)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update account")
	}
	return c.JSON(http.StatusOK, toUserResponse(updated))
}

// Refresh issues a fresh token for the authenticated account.
func (s *APIV1Service) Refresh(c echo.Context) error {
	user := middleware.UserFromContext(c)
	return s.issueToken(c, http.StatusOK, user)
}

// Verify confirms the presented token is valid and names its account.
func (s *APIV1Service) Verify(c echo.Context) error {
	user := middleware.UserFromContext(c)
	return c.JSON(http.StatusOK, map[string]any{
		"valid": true,
		"user":  toUserResponse(user),
	})
}

func (s *APIV1Service) issueToken(c echo.Context, status int, user *store.User) error {
	token, err := auth.IssueToken(s.profile.JWTSecret, user.ID, user.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}
	return c.JSON(status, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        toUserResponse(user),
	})
}
