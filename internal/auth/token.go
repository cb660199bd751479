package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenExpiry is the default lifetime for player session tokens.
const DefaultTokenExpiry = 24 * time.Hour

const issuer = "avalon-engine"

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims identifies the player a session token was issued to.
type Claims struct {
	PlayerID    string
	DisplayName string
	ExpiresAt   time.Time
}

type playerClaims struct {
	jwt.RegisteredClaims
	DisplayName string `json:"display_name"`
}

// Verifier checks a player session token. *Signer implements it.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// Signer issues and verifies HS256 player tokens.
type Signer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewSigner returns a Signer. expiry <= 0 means DefaultTokenExpiry.
func NewSigner(secret []byte, expiry time.Duration) (*Signer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret is required")
	}
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}
	return &Signer{secret: secret, expiry: expiry, now: time.Now}, nil
}

// Issue signs a token for playerID.
func (s *Signer) Issue(playerID, displayName string) (token string, expiresAt time.Time, err error) {
	now := s.now().UTC()
	expiresAt = now.Add(s.expiry)
	claims := playerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		DisplayName: displayName,
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify checks the signature and expiry of token and returns its claims.
func (s *Signer) Verify(token string) (*Claims, error) {
	var parsed playerClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if parsed.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &Claims{
		PlayerID:    parsed.Subject,
		DisplayName: parsed.DisplayName,
		ExpiresAt:   parsed.ExpiresAt.Time,
	}, nil
}
