package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Keys the auth middleware stores on the gin context
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	JWTIsAdminKey = "jwt_is_admin"
)

const (
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTMiddlewareConfig wires token validation. Revocations and Logger may be nil.
type JWTMiddlewareConfig struct {
	JWTService  *auth.JWTService
	Revocations auth.RevocationList
	Logger      *zap.Logger
}

// authFailures maps validation errors to the code and message the client sees.
// Anything unlisted is a plain ERR_UNAUTHORIZED.
var authFailures = []struct {
	err     error
	code    string
	message string
}{
	{auth.ErrExpiredToken, dto.ErrCodeTokenExpired, "Token has expired"},
	{auth.ErrTokenRevoked, dto.ErrCodeTokenRevoked, "Token has been revoked"},
	{auth.ErrInvalidToken, dto.ErrCodeTokenInvalid, "Invalid token"},
	{auth.ErrInvalidTokenType, dto.ErrCodeTokenInvalid, "Invalid token"},
	{auth.ErrTokenNotYetValid, dto.ErrCodeTokenInvalid, "Invalid token"},
	{auth.ErrInvalidClaims, dto.ErrCodeTokenInvalid, "Invalid token"},
	{auth.ErrMissingUserID, dto.ErrCodeTokenInvalid, "Invalid token"},
}

// JWTAuthMiddleware authenticates with svc and no revocation list
func JWTAuthMiddleware(svc *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{JWTService: svc})
}

// JWTAuthMiddlewareWithConfig requires a valid bearer access token. The claims,
// user id and admin flag are stored on the gin context and the actor on the
// request context. A failing revocation lookup is logged and the request
// proceeds.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		raw, err := bearerToken(c.GetHeader(AuthHeaderKey))
		if err != nil {
			rejectToken(c, log, err)
			return
		}
		claims, err := cfg.JWTService.ValidateAccessToken(raw)
		if err != nil {
			rejectToken(c, log, err)
			return
		}

		if cfg.Revocations != nil {
			switch revoked, err := cfg.Revocations.IsRevoked(c.Request.Context(), claims); {
			case err != nil:
				log.Error("Failed to check token revocation",
					zap.String("jti", claims.ID),
					zap.String("user_id", claims.UserID),
					zap.Error(err))
			case revoked:
				rejectToken(c, log, auth.ErrTokenRevoked)
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTIsAdminKey, cfg.JWTService.IsAdmin(claims))
		c.Request = c.Request.WithContext(logger.WithActor(c.Request.Context(), actorName(claims)))
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value
func bearerToken(header string) (string, error) {
	token, found := strings.CutPrefix(header, BearerPrefix)
	if !found {
		return "", auth.ErrInvalidToken
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

func rejectToken(c *gin.Context, log *zap.Logger, err error) {
	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	for _, f := range authFailures {
		if errors.Is(err, f.err) {
			code, message = f.code, f.message
			break
		}
	}
	log.Warn("Rejected access token", zap.String("path", c.Request.URL.Path), zap.String("code", code), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(code, message, c.GetString(RequestIDKey)))
}

// RequireAdmin answers 401 without authenticated claims and 403 without the
// admin role. Chain it after the JWT middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code, message := 0, "", ""
		switch {
		case GetJWTClaims(c) == nil:
			status, code, message = http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required"
		case !IsAdmin(c):
			status, code, message = http.StatusForbidden, dto.ErrCodeForbidden, "Admin access required"
		default:
			c.Next()
			return
		}
		c.AbortWithStatusJSON(status, dto.Fail(code, message, c.GetString(RequestIDKey)))
	}
}

func actorName(claims *auth.Claims) string {
	if claims.Email != "" {
		return claims.Email
	}
	return claims.UserID
}

func GetJWTClaims(c *gin.Context) *auth.Claims {
	v, _ := c.Get(JWTClaimsKey)
	claims, _ := v.(*auth.Claims)
	return claims
}

func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetActor names the caller on audited admin actions: email, else user id
func GetActor(c *gin.Context) string {
	if claims := GetJWTClaims(c); claims != nil {
		return actorName(claims)
	}
	return ""
}

func IsAdmin(c *gin.Context) bool {
	return c.GetBool(JWTIsAdminKey)
}
