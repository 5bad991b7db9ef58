package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/modelconfig/internal/auth"
	"github.com/nebari-dev/modelconfig/internal/version"
)

// HealthCheck godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} Response
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	success(c, http.StatusOK, "ok", gin.H{"status": "healthy"})
}

// GetVersion godoc
// @Summary Get version information
// @Tags system
// @Produce json
// @Success 200 {object} Response{data=version.Info}
// @Router /version [get]
func GetVersion(c *gin.Context) {
	success(c, http.StatusOK, "ok", version.Get())
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body auth.LoginRequest true "Login credentials"
// @Success 200 {object} Response{data=auth.LoginResponse}
// @Failure 401 {object} Response
// @Failure 422 {object} Response
// @Router /auth/login [post]
func Login(authenticator *auth.Authenticator) gin.HandlerFunc {
	registerValidators()
	return func(c *gin.Context) {
		var req auth.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			failure(c, http.StatusUnprocessableEntity, "Validation failed.", bindingErrors(err))
			return
		}

		resp, err := authenticator.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				failure(c, http.StatusUnauthorized, "Invalid credentials.", nil)
				return
			}
			failure(c, http.StatusInternalServerError, "Internal server error.", nil)
			return
		}

		success(c, http.StatusOK, "Logged in.", resp)
	}
}
