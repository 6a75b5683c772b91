package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued session token stays valid.
const DefaultTokenTTL = time.Hour

// Claims carried by session tokens: the owning lab's identity on top of the
// registered claim set.
type Claims struct {
	jwt.RegisteredClaims
	LabID    string `json:"labId"`
	LabEmail string `json:"labEmail"`
}

// TokenConfig holds the signing parameters for session tokens.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Issuer signs and verifies session tokens with a symmetric HS256 key.
type Issuer struct {
	cfg TokenConfig

	// now is swapped in tests to control issuance and expiry checks.
	now func() time.Time
}

// NewIssuer validates the signing configuration up front: tokens must never
// be signed with an empty key or an unset issuer/audience.
func NewIssuer(cfg TokenConfig) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token issuer: signing secret is required")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("token issuer: issuer is required")
	}
	if cfg.Audience == "" {
		return nil, errors.New("token issuer: audience is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}
	return &Issuer{cfg: cfg, now: time.Now}, nil
}

// Issue returns a signed compact token identifying the lab, expiring TTL
// after issuance.
func (i *Issuer) Issue(labID, email string) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			Subject:   labID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.TTL)),
		},
		LabID:    labID,
		LabEmail: email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenStr and validates signature, issuer, audience and
// expiry with no leeway. It returns the embedded claims on success.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (interface{}, error) { return []byte(i.cfg.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.cfg.Issuer),
		jwt.WithAudience(i.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return i.now() }),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
