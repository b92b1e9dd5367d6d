package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"hotel-frontdesk/logger"
	"hotel-frontdesk/utils"
)

// StaffIDKey is the gin context key holding the authenticated staff id.
const StaffIDKey = "staff_id"

type StaffClaims struct {
	StaffID string `json:"staff_id"`
	Name    string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

var errMissingStaffID = errors.New("token has no staff_id")

// NewStaffToken signs an HS256 token for staffID. Used by tooling and tests;
// the front desk itself only verifies tokens.
func NewStaffToken(secret, staffID, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := StaffClaims{
		StaffID: staffID,
		Name:    name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staffID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ParseStaffToken(secret, token string) (*StaffClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &StaffClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*StaffClaims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if strings.TrimSpace(claims.StaffID) == "" {
		return nil, errMissingStaffID
	}
	return claims, nil
}

// StaffAuth requires a bearer token signed with secret and exposes its
// staff_id claim. With an empty secret every request passes and handlers fall
// back to the staffId field of the request body.
func StaffAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			utils.JSONErrorCode(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		claims, err := ParseStaffToken(secret, token)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "rejected staff token", "error", err)
			utils.JSONErrorCode(c, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}

		c.Set(StaffIDKey, claims.StaffID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.StaffIDKey, claims.StaffID))
		c.Next()
	}
}

// StaffID returns the authenticated staff id, or fallback when the request
// was not authenticated.
func StaffID(c *gin.Context, fallback string) string {
	if v, ok := c.Get(StaffIDKey); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	return strings.TrimSpace(fallback)
}
