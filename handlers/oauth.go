package handlers

import (
	"net/http"

	"workdrive/utils"

	"github.com/gin-gonic/gin"
)

// OAuthLogin redirects the browser to the provider's consent page.
func OAuthLogin(c *gin.Context) {
	provider := c.Param("provider")

	authURL, err := getServices().OAuth.AuthURL(c.Request.Context(), provider)
	if respondServiceError(c, err) {
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// OAuthCallback finishes the provider round trip and issues a session token.
func OAuthCallback(c *gin.Context) {
	provider := c.Param("provider")
	state := c.Query("state")
	code := c.Query("code")

	if errMsg := c.Query("error"); errMsg != "" {
		utils.Error(c, http.StatusBadRequest, "login was cancelled or denied")
		return
	}
	if state == "" || code == "" {
		utils.Error(c, http.StatusBadRequest, "missing state or code")
		return
	}

	out, err := getServices().OAuth.HandleCallback(c.Request.Context(), provider, state, code)
	if respondServiceError(c, err) {
		return
	}

	utils.Success(c, out)
}
