package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Identity is the resolved user attached to the request context.
type Identity struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	StudentNumber string `json:"student_number"`
}

// StudentResolver looks up the student row behind a token subject.
// Returns nil without error when no row exists.
type StudentResolver interface {
	Resolve(ctx context.Context, userID string) (*Identity, error)
}

// AdminChecker reports whether a user carries the admin flag.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Authenticate enforces bearer JWT tokens and resolves the subject against
// the students table. A structurally valid token whose subject no longer
// exists is rejected.
func Authenticate(signingKey, issuer string, resolver StudentResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no token provided", "code": "token_missing"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		userID, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			if errors.Is(err, ErrExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired", "code": "token_expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "code": "token_invalid"})
			return
		}
		ident, err := resolver.Resolve(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		if ident == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "code": "unknown_user"})
			return
		}
		c.Set(identityKey, *ident)
		c.Next()
	}
}

// RequireAdmin rejects authenticated users without the admin flag.
// Must run after Authenticate.
func RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no token provided", "code": "token_missing"})
			return
		}
		admin, err := checker.IsAdmin(c.Request.Context(), ident.ID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		if !admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the identity attached by Authenticate.
func CurrentUser(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	ident, ok := v.(Identity)
	return ident, ok
}
