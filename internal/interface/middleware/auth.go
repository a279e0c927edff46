package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/devconnector-api/pkg/helpers"
	"github.com/oksasatya/devconnector-api/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	// TokenHeader is the header the React client sends the token in.
	TokenHeader = "x-auth-token"
)

// TokenVerifier resolves a signed access token to its claims.
type TokenVerifier interface {
	ParseAccessToken(token string) (*helpers.Claims, error)
}

// tokenFrom takes the credential from x-auth-token, then Authorization: Bearer,
// then the access_token cookie.
func tokenFrom(c *gin.Context) string {
	if t := strings.TrimSpace(c.GetHeader(TokenHeader)); t != "" {
		return t
	}
	if h := c.GetHeader("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if t, err := c.Cookie(helpers.AccessTokenCookie); err == nil {
		return t
	}
	return ""
}

// Auth verifies the access token and puts the user id in the Gin context.
// It does not look the user up: a structurally valid token is enough.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "No token, authorization denied", nil)
			return
		}
		claims, err := verifier.ParseAccessToken(token)
		if err != nil || claims.UserID == "" {
			response.Error[any](c, http.StatusUnauthorized, "Token is not valid", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" on public routes.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
