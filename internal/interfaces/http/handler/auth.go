package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/application/media"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// AuthService signs users in and out
type AuthService interface {
	Register(ctx context.Context, req identityapp.RegisterRequest) (*identityapp.AuthResponse, error)
	Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.AuthResponse, error)
	Refresh(ctx context.Context, req identityapp.RefreshRequest) (*identityapp.AuthResponse, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	Me(ctx context.Context, userID uuid.UUID) (*identityapp.SessionResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req identityapp.ChangePasswordRequest) error
}

// ProfileService reads and edits the caller's profile
type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*identityapp.ProfileResponse, error)
	Update(ctx context.Context, userID uuid.UUID, req identityapp.UpdateProfileRequest) (*identityapp.ProfileResponse, error)
	RequestAvatarUpload(ctx context.Context, userID uuid.UUID, req media.UploadRequest) (*media.UploadTicket, error)
}

// AuthHandler handles authentication and profile endpoints
type AuthHandler struct {
	BaseHandler
	authService     AuthService
	profileService  ProfileService
	guestCookieName string
}

// NewAuthHandler creates a new auth handler. guestCookieName is where the
// guest id is read from when the X-Guest-ID header is absent.
func NewAuthHandler(authService AuthService, profileService ProfileService, guestCookieName string) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		profileService:  profileService,
		guestCookieName: guestCookieName,
	}
}

// Register godoc
// @Summary      Register an account
// @Description  Create an account and sign in. A guest cart and local favorites identified by the guest id are merged into the account.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Guest-ID header string false "Guest id"
// @Param        request body identityapp.RegisterRequest true "Registration"
// @Success      201 {object} dto.Response{data=identityapp.AuthResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.GuestID = middleware.GuestIDOf(c, h.guestCookieName)
	req.IP = c.ClientIP()

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Login godoc
// @Summary      Sign in
// @Description  Authenticate with email and password. A guest cart and local favorites are merged into the account.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Guest-ID header string false "Guest id"
// @Param        request body identityapp.LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=identityapp.AuthResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.GuestID = middleware.GuestIDOf(c, h.guestCookieName)
	req.IP = c.ClientIP()

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Refresh godoc
// @Summary      Refresh tokens
// @Description  Exchange a refresh token for a new token pair. Each refresh token works once.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.RefreshRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=identityapp.AuthResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout godoc
// @Summary      Sign out
// @Description  Revoke the current access token and clear the server cart
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Logged out"})
}

// Me godoc
// @Summary      Current session
// @Description  Return the resolved session: user, profile and role
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=identityapp.SessionResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	session, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Replace the password and revoke every earlier token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.ChangePasswordRequest true "Passwords"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req identityapp.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Password changed, sign in again"})
}

// GetProfile godoc
// @Summary      Get profile
// @Tags         profile
// @Produce      json
// @Success      200 {object} dto.Response{data=identityapp.ProfileResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// UpdateProfile godoc
// @Summary      Update profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request body identityapp.UpdateProfileRequest true "Profile fields"
// @Success      200 {object} dto.Response{data=identityapp.ProfileResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req identityapp.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// AvatarUploadURL godoc
// @Summary      Request an avatar upload URL
// @Description  Return a presigned PUT URL for a new avatar image
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request body media.UploadRequest true "Upload"
// @Success      200 {object} dto.Response{data=media.UploadTicket}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /profile/avatar/upload-url [post]
func (h *AuthHandler) AvatarUploadURL(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req media.UploadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ticket, err := h.profileService.RequestAvatarUpload(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ticket)
}

var (
	_ AuthService    = (*identityapp.AuthService)(nil)
	_ ProfileService = (*identityapp.ProfileService)(nil)
)
