package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/storefront/backend/internal/application/identity"
)

// UserAdminService backs the admin user screens
type UserAdminService interface {
	List(ctx context.Context, f identityapp.UserListFilter) (*identityapp.UserListResult, error)
	SetRole(ctx context.Context, actorID, targetID uuid.UUID, req identityapp.SetRoleRequest) (*identityapp.SessionResponse, error)
	SetStatus(ctx context.Context, actorID, targetID uuid.UUID, req identityapp.SetStatusRequest) error
}

// UserHandler handles admin user management
type UserHandler struct {
	BaseHandler
	userService UserAdminService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService UserAdminService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List godoc
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Param        search query string false "Email or name search"
// @Param        role query string false "Role" Enums(admin, customer)
// @Param        status query string false "Status" Enums(active, disabled)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]identityapp.UserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var filter identityapp.UserListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	result, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, result.Users, result.Total, page, pageSize)
}

// SetRole godoc
// @Summary      Set a user role
// @Description  Admins cannot demote themselves
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Param        request body identityapp.SetRoleRequest true "Role"
// @Success      200 {object} dto.Response{data=identityapp.SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id}/role [patch]
func (h *UserHandler) SetRole(c *gin.Context) {
	actorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	targetID, ok := h.uuidParam(c, "id", "user")
	if !ok {
		return
	}
	var req identityapp.SetRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.userService.SetRole(c.Request.Context(), actorID, targetID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// SetStatus godoc
// @Summary      Enable or disable a user
// @Description  Disabling revokes every token of the user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Param        request body identityapp.SetStatusRequest true "Status"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id}/status [patch]
func (h *UserHandler) SetStatus(c *gin.Context) {
	actorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	targetID, ok := h.uuidParam(c, "id", "user")
	if !ok {
		return
	}
	var req identityapp.SetStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.userService.SetStatus(c.Request.Context(), actorID, targetID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"user_id": targetID, "status": req.Status})
}

var _ UserAdminService = (*identityapp.UserAdminService)(nil)
