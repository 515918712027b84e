package disco

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims is the structured view of a validated session token
type AuthClaims interface {
	Subject() string
	UserID() string
	Email() string
	Username() string
	Role() string
	HasRole(role string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims. Besides the
// registered claims it carries the account identity, email, display name,
// and role.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID          string   `json:"uid,omitempty"`
	UserEmail    string   `json:"email,omitempty"`
	UserName     string   `json:"username,omitempty"`
	UserRoleName UserRole `json:"role,omitempty"`
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Email returns the account email
func (c *JWTClaims) Email() string {
	return c.UserEmail
}

// Username returns the display name
func (c *JWTClaims) Username() string {
	return c.UserName
}

// Role returns the account role
func (c *JWTClaims) Role() string {
	return c.UserRoleName
}

// HasRole checks if the claims carry the given role
func (c *JWTClaims) HasRole(role string) bool {
	return c.UserRoleName == role
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ensureTokenID gives every token a unique jti so two sessions minted for
// the same user in the same second are still byte distinct.
func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
