package utils // utils provides helpers for session token creation

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session roles stored in the token's "role" claim.
const (
	RoleStudent = "STUDENT"
	RoleAdmin   = "ADMIN"
)

// SessionToken is a signed JWT access token along with its expiry.
// The Token field contains the serialized JWT; Exp the UTC
// expiration time. Tokens are presented in the Authorization header
// on protected endpoints.
type SessionToken struct {
	Token string
	Exp   time.Time
}

// NewSessionToken builds and signs an HS256 JWT for a user. The
// claims are subject (sub), role, expiration (exp) and issued at
// (iat). ttlHours controls the session lifetime.
func NewSessionToken(secret string, userID uint64, role string, ttlHours int) (SessionToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlHours) * time.Hour)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}
