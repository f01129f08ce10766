package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/entities"
)

// AuthController handles login, signup and logout for the JSON API.
type AuthController struct {
	service        *auth.Service
	sessionManager *auth.SessionManager
	rateLimiter    *auth.RateLimiter
	auditor        Auditor
}

func NewAuthController(service *auth.Service, sessionManager *auth.SessionManager, rateLimiter *auth.RateLimiter, auditor Auditor) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		auditor:        auditor,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates credentials and establishes a session.
func (controller *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		respondBadRequest(c, "email and password are required")
		return
	}

	ip := c.ClientIP()
	if controller.rateLimiter != nil {
		if allowed, retryAfter := controller.rateLimiter.Allow(ip, req.Email); !allowed {
			c.Header("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))
			c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Message: "too many login attempts, try again later",
			})
			return
		}
	}

	user, err := controller.service.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			if controller.rateLimiter != nil {
				controller.rateLimiter.RecordFailure(ip, req.Email)
			}
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "invalid email or password"})
			return
		}
		respondStoreError(c, err, "user")
		return
	}

	if controller.rateLimiter != nil {
		controller.rateLimiter.RecordSuccess(ip, req.Email)
	}
	if err := controller.sessionManager.CreateSession(c.Request, user); err != nil {
		respondInternalError(c, err, "create session")
		return
	}
	controller.auditor.Record(user.ID, entities.AuditEventAuth, "login", "", ip)

	c.JSON(http.StatusOK, gin.H{
		"message": "logged in",
		"user":    user,
	})
}

// Signup registers a student account and logs it in.
func (controller *AuthController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := controller.service.Signup(req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			respondConflict(c, "email already registered")
		case errors.Is(err, auth.ErrNameRequired),
			errors.Is(err, auth.ErrEmailRequired),
			errors.Is(err, auth.ErrPasswordRequired),
			errors.Is(err, auth.ErrEmailInvalid),
			errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrPasswordTooLong):
			respondBadRequest(c, err.Error())
		default:
			respondStoreError(c, err, "user")
		}
		return
	}

	if err := controller.sessionManager.CreateSession(c.Request, user); err != nil {
		respondInternalError(c, err, "create session")
		return
	}
	controller.auditor.Record(user.ID, entities.AuditEventAuth, "signup", "", c.ClientIP())

	c.JSON(http.StatusCreated, gin.H{
		"message": "account created",
		"user":    user,
	})
}

// Logout destroys the current session.
func (controller *AuthController) Logout(c *gin.Context) {
	userID := auth.GetUserID(c)
	if err := controller.sessionManager.DestroySession(c.Request); err != nil {
		respondInternalError(c, err, "destroy session")
		return
	}
	if userID != "" {
		controller.auditor.Record(userID, entities.AuditEventAuth, "logout", "", c.ClientIP())
	}
	respondSuccess(c, "logged out")
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword updates the signed-in user's password.
func (controller *AuthController) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	userID := auth.GetUserID(c)
	err := controller.service.ChangePassword(userID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidPassword):
			respondBadRequest(c, "current password is incorrect")
		case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
			respondBadRequest(c, err.Error())
		default:
			respondStoreError(c, err, "user")
		}
		return
	}
	controller.auditor.Record(userID, entities.AuditEventAuth, "change_password", "", c.ClientIP())
	respondSuccess(c, "password changed")
}

// Me returns the signed-in user.
func (controller *AuthController) Me(c *gin.Context) {
	user, err := controller.service.GetUserByID(auth.GetUserID(c))
	if err != nil {
		respondStoreError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, user)
}
