package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
)

// SignInGoogle handles POST /api/v1/auth/google
func (h *Handlers) SignInGoogle(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.authService.SignIn(c.Request.Context(), req.IDToken)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetSession handles GET /api/v1/auth/session
func (h *Handlers) GetSession(c *gin.Context) {
	sess := session(c)
	c.JSON(http.StatusOK, gin.H{
		"session":   sess,
		"next_step": sess.NextStep(),
	})
}

// SignOut handles POST /api/v1/auth/signout
func (h *Handlers) SignOut(c *gin.Context) {
	if err := h.authService.SignOut(c.Request.Context(), session(c)); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "signed_out",
		"next_step": models.NextStepSignIn,
	})
}
