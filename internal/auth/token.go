package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const purposeVerify = "verify"

type claims struct {
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies the two signed token kinds: bearer access
// tokens and time-limited email-verification tokens. A verification
// token never passes as an access token, or vice versa.
type Tokens struct {
	secret    []byte
	accessTTL time.Duration
	verifyTTL time.Duration
}

func NewTokens(secret string, accessTTL, verifyTTL time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), accessTTL: accessTTL, verifyTTL: verifyTTL}
}

// Access issues a bearer token for the user.
func (t *Tokens) Access(userID uuid.UUID) (string, error) {
	return t.issue(userID, "", t.accessTTL)
}

// Verification issues the time-limited token embedded in the
// verification email link.
func (t *Tokens) Verification(userID uuid.UUID) (string, error) {
	return t.issue(userID, purposeVerify, t.verifyTTL)
}

func (t *Tokens) issue(userID uuid.UUID, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := &claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// ParseAccess validates a bearer token and returns the user id.
func (t *Tokens) ParseAccess(token string) (uuid.UUID, error) {
	return t.parse(token, "")
}

// ParseVerification validates an email-verification token and returns
// the user id.
func (t *Tokens) ParseVerification(token string) (uuid.UUID, error) {
	return t.parse(token, purposeVerify)
}

func (t *Tokens) parse(token, purpose string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.Purpose != purpose {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return userID, nil
}
