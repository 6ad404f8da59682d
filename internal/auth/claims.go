package auth

import (
	"time"

	"buddhist-lent/pledgeboard/internal/constants"
)

// UserClaims is what the auth middleware puts in the request context. The
// role is read from the database on every request, so role changes apply
// immediately to existing sessions and tokens.
type UserClaims interface {
	UserID() uint
	Role() string
	Name() string
	Source() string
	IsAdmin() bool
}

type SessionClaims struct {
	UserIDValue uint
	RoleValue   constants.Role
	NameValue   string
	SessionID   string
	// Set when resolving the session slid its expiry forward.
	Refreshed bool
	ExpiresAt time.Time
}

func (c *SessionClaims) UserID() uint   { return c.UserIDValue }
func (c *SessionClaims) Role() string   { return c.RoleValue.String() }
func (c *SessionClaims) Name() string   { return c.NameValue }
func (c *SessionClaims) Source() string { return string(constants.RequestSourceSession) }
func (c *SessionClaims) IsAdmin() bool  { return c.RoleValue == constants.RoleAdmin }

type JWTClaims struct {
	UserIDValue uint
	RoleValue   constants.Role
	NameValue   string
	Token       *IssuedToken
}

func (c *JWTClaims) UserID() uint   { return c.UserIDValue }
func (c *JWTClaims) Role() string   { return c.RoleValue.String() }
func (c *JWTClaims) Name() string   { return c.NameValue }
func (c *JWTClaims) Source() string { return string(constants.RequestSourceJWT) }
func (c *JWTClaims) IsAdmin() bool  { return c.RoleValue == constants.RoleAdmin }
