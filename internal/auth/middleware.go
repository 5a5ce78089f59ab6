package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/logger"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/users"
	"github.com/gin-gonic/gin"
)

// Accounts resolves the user behind a token.
type Accounts interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	EnsureFirebaseUser(ctx context.Context, fu users.FirebaseUser) (*domain.User, error)
}

// Authenticator accepts the service's own access tokens and, when configured,
// Firebase ID tokens which are mapped onto local users. The admin flag always
// comes from the stored user, so revoking it takes effect on the next request.
type Authenticator struct {
	tokens   *Tokens
	firebase IDTokenVerifier
	users    Accounts
}

func NewAuthenticator(tokens *Tokens, firebase IDTokenVerifier, users Accounts) *Authenticator {
	return &Authenticator{tokens: tokens, firebase: firebase, users: users}
}

func (a *Authenticator) Authenticate(ctx context.Context, raw string) (domain.Actor, error) {
	claims, err := a.tokens.Parse(raw)
	if err == nil {
		if a.users == nil {
			return domain.Actor{ID: claims.UserID, IsAdmin: claims.Admin}, nil
		}
		u, uerr := a.users.GetByID(ctx, claims.UserID)
		if errors.Is(uerr, domain.ErrNotFound) {
			return domain.Actor{}, domain.ErrUnauthorized
		}
		if uerr != nil {
			return domain.Actor{}, uerr
		}
		return u.Actor(), nil
	}
	if a.firebase == nil || a.users == nil {
		return domain.Actor{}, err
	}

	decoded, ferr := a.firebase.VerifyIDToken(ctx, raw)
	if ferr != nil {
		return domain.Actor{}, errors.Join(domain.ErrUnauthorized, ferr)
	}

	fu := users.FirebaseUser{UID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		fu.Email = email
	}
	if verified, ok := decoded.Claims["email_verified"].(bool); ok {
		fu.EmailVerified = verified
	}
	if name, ok := decoded.Claims["name"].(string); ok {
		fu.Name = name
	}

	u, uerr := a.users.EnsureFirebaseUser(ctx, fu)
	if uerr != nil {
		return domain.Actor{}, uerr
	}
	return u.Actor(), nil
}

// Middleware rejects requests without a valid bearer token.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			return
		}

		actor, err := a.Authenticate(c.Request.Context(), raw)
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthorized) {
				logger.FromContext(c.Request.Context()).WithError(err).Error("authenticate")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			return
		}

		SetActor(c, actor)
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(),
			logger.FromContext(c.Request.Context()).WithField("user_id", actor.ID)))
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
