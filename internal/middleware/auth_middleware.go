package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/campusnet/internal/app/auth"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
	jwtauth "github.com/yigit/campusnet/internal/pkg/auth"
)

// AuthMiddleware attaches the caller's principal to the request context
type AuthMiddleware struct {
	jwtService *jwtauth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *jwtauth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// JWTAuth rejects requests without a valid bearer token
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return m.authenticate(true, false)
}

// OptionalJWTAuth attaches a principal when a token is present. Requests without
// a token continue anonymously; invalid tokens are still rejected.
func (m *AuthMiddleware) OptionalJWTAuth() gin.HandlerFunc {
	return m.authenticate(false, false)
}

// SocketAuth is JWTAuth for WebSocket handshakes, which browsers cannot send headers
// with. It also accepts the token in the `token` query parameter.
func (m *AuthMiddleware) SocketAuth() gin.HandlerFunc {
	return m.authenticate(true, true)
}

func (m *AuthMiddleware) authenticate(required, fromQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" && fromQuery {
			header = c.Query("token")
		}
		if header == "" {
			if required {
				HandleAPIError(c, apperrors.NewUnauthenticatedError("authentication required"))
				return
			}
			c.Next()
			return
		}

		tokenString, err := jwtauth.ExtractBearerToken(header)
		if err != nil {
			HandleAPIError(c, err)
			return
		}
		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		principal, err := principalFromClaims(claims)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		c.Set("principalID", principal.ID)
		c.Set("role", string(principal.Role))
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

func principalFromClaims(claims *jwtauth.Claims) (auth.Principal, error) {
	role := auth.Role(claims.Role)
	if !role.Valid() {
		return auth.Principal{}, apperrors.ErrTokenInvalid
	}
	p := auth.Principal{ID: claims.Subject, Role: role}
	for _, r := range claims.Roles {
		fr := models.FacultyRole(r)
		if fr.Valid() {
			p.FacultyRoles = append(p.FacultyRoles, fr)
		}
	}
	return p, nil
}
