package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gdugdh24/location-insights/internal/config"
	"github.com/gdugdh24/location-insights/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RealtorIDKey = "realtor_id"
	RoleKey      = "role"

	RoleAdmin = "admin"
)

var ErrInvalidToken = fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)

// errorBody has the same shape as the handlers' error responses.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: msg, Code: "unauthorized"})
}

// Claims carry the realtor id in the subject.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	cfg *config.JWTConfig
}

func NewAuthMiddleware(cfg *config.JWTConfig) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg}
}

func (m *AuthMiddleware) ParseToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(m.cfg.AccessSecret), nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RequireAuth validates the bearer token and sets realtor_id and role.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "invalid authorization format")
			return
		}
		claims, err := m.ParseToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		c.Set(RealtorIDKey, claims.Subject)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(RoleKey)
		if !exists {
			abortUnauthorized(c, "unauthorized")
			return
		}
		if r, _ := role.(string); r != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody{Error: "forbidden", Code: "forbidden"})
			return
		}
		c.Next()
	}
}
