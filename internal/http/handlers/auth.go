package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/http/response"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
	"github.com/yungbote/osteobridge-backend/internal/services"
)

// AuthHandler answers with the "msg" key the portal frontend reads for auth
// routes.
type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

type userView struct {
	ID       uint   `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func viewUser(u *types.User) userView {
	return userView{ID: u.ID, Username: u.Username, Email: u.Email}
}

func (ah *AuthHandler) fail(c *gin.Context, err error, fallback string) {
	status, msg := response.Status(err, fallback)
	if status >= http.StatusInternalServerError {
		ah.log.Error(fallback, "error", err)
	}
	c.JSON(status, gin.H{"success": false, "msg": msg})
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Invalid request body"})
		return
	}
	user, err := ah.authService.RegisterUser(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		ah.fail(c, err, "Registration failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"userID":  user.ID,
		"msg":     "User successfully registered",
	})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Invalid request body"})
		return
	}
	token, user, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		ah.fail(c, err, "Authentication failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      token,
		"expires_in": int(ah.authService.GetAccessTTL().Seconds()),
		"user":       viewUser(user),
	})
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	token, user, err := ah.authService.RefreshUser(c.Request.Context())
	if err != nil {
		ah.fail(c, err, "Token refresh failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      token,
		"expires_in": int(ah.authService.GetAccessTTL().Seconds()),
		"user":       viewUser(user),
		"msg":        "Token refreshed successfully",
	})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
		ah.fail(c, err, "Logout failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "msg": "User successfully logged out"})
}
