package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/entities"
)

// UsersController provides the admin account management API.
type UsersController struct {
	users   UserStore
	service *auth.Service
	auditor Auditor
}

func NewUsersController(userStore UserStore, service *auth.Service, auditor Auditor) *UsersController {
	return &UsersController{
		users:   userStore,
		service: service,
		auditor: auditor,
	}
}

// ListUsers returns all accounts.
func (controller *UsersController) ListUsers(c *gin.Context) {
	users, err := controller.users.List()
	if err != nil {
		respondStoreError(c, err, "users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser registers an account with an explicit role.
func (controller *UsersController) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	role := entities.UserRole(req.Role)
	if req.Role == "" {
		role = entities.UserRoleStudent
	}

	user, err := controller.service.CreateUser(
		strings.TrimSpace(req.Name),
		strings.TrimSpace(strings.ToLower(req.Email)),
		req.Password,
		role,
	)
	if err != nil {
		switch err {
		case auth.ErrEmailExists:
			respondConflict(c, "email already registered")
		case auth.ErrNameRequired, auth.ErrEmailRequired, auth.ErrPasswordRequired,
			auth.ErrEmailInvalid, auth.ErrInvalidRole,
			auth.ErrPasswordTooShort, auth.ErrPasswordTooLong:
			respondBadRequest(c, err.Error())
		default:
			respondStoreError(c, err, "user")
		}
		return
	}
	controller.auditor.Record(auth.GetUserID(c), entities.AuditEventUsers, "create_user", user.ID, c.ClientIP())
	respondCreated(c, user)
}

type updateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UpdateUser applies a partial update to an account. Role changes are
// validated against the enum; an admin cannot demote themselves.
func (controller *UsersController) UpdateUser(c *gin.Context) {
	id := c.Param("id")

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = name
	}
	if email := strings.TrimSpace(strings.ToLower(req.Email)); email != "" {
		updates["email"] = email
	}
	if req.Role != "" {
		role := entities.UserRole(req.Role)
		if !entities.ValidRole(role) {
			respondBadRequest(c, "role must be admin or student")
			return
		}
		if id == auth.GetUserID(c) && role != entities.UserRoleAdmin {
			respondConflict(c, "cannot change your own role")
			return
		}
		updates["role"] = role
	}
	if len(updates) == 0 {
		respondBadRequest(c, "no fields to update")
		return
	}

	if err := controller.users.Update(id, updates); err != nil {
		respondStoreError(c, err, "user")
		return
	}
	controller.auditor.Record(auth.GetUserID(c), entities.AuditEventUsers, "update_user", id, c.ClientIP())

	user, err := controller.users.GetByID(id)
	if err != nil {
		respondStoreError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (controller *UsersController) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == auth.GetUserID(c) {
		respondConflict(c, "cannot delete your own account")
		return
	}

	if err := controller.users.Delete(id); err != nil {
		respondStoreError(c, err, "user")
		return
	}
	controller.auditor.Record(auth.GetUserID(c), entities.AuditEventUsers, "delete_user", id, c.ClientIP())
	respondSuccess(c, "user deleted")
}
