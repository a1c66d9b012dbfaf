// File: /middleware/auth.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"vanlife-api/services"
)

const (
	ContextEmail  = "auth_email"
	ContextClaims = "auth_claims"

	AdminCookie = "admin_session"
	AdminLogin  = "/authorize"
)

func denyToken(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"msg":        msg,
		"message":    msg,
		"statusText": "Not Authorized",
	})
}

// RequireToken accepts only bearer tokens of the given kind and stores the
// subject email in the context.
func RequireToken(tokens *services.TokenService, kind services.TokenKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			denyToken(c, http.StatusUnauthorized, "Missing Authorization Header")
			return
		}
		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" {
			denyToken(c, http.StatusUnprocessableEntity, "Bad Authorization header. Expected 'Authorization: Bearer <JWT>'")
			return
		}

		claims, err := tokens.Parse(parts[1], kind)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrTokenExpired):
			denyToken(c, http.StatusUnauthorized, "Token has expired")
			return
		case errors.Is(err, services.ErrWrongTokenKind):
			if kind == services.KindRefresh {
				denyToken(c, http.StatusUnprocessableEntity, "Only refresh tokens are allowed")
			} else {
				denyToken(c, http.StatusUnprocessableEntity, "Only non-refresh tokens are allowed")
			}
			return
		case errors.Is(err, services.ErrTokenMalformed):
			denyToken(c, http.StatusUnprocessableEntity, "Not enough segments")
			return
		default:
			denyToken(c, http.StatusUnprocessableEntity, "Signature verification failed")
			return
		}

		c.Set(ContextEmail, claims.Email)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

func RequireAccess(tokens *services.TokenService) gin.HandlerFunc {
	return RequireToken(tokens, services.KindAccess)
}

func RequireRefresh(tokens *services.TokenService) gin.HandlerFunc {
	return RequireToken(tokens, services.KindRefresh)
}

// AdminSession redirects to the back-office login unless the session
// cookie holds a valid admin token.
func AdminSession(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(AdminCookie)
		if err != nil || raw == "" {
			c.Redirect(http.StatusFound, AdminLogin)
			c.Abort()
			return
		}
		claims, err := tokens.Parse(raw, services.KindAdmin)
		if err != nil {
			c.Redirect(http.StatusFound, AdminLogin)
			c.Abort()
			return
		}
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// EmailFrom returns the authenticated email set by RequireToken.
func EmailFrom(c *gin.Context) string {
	return c.GetString(ContextEmail)
}
