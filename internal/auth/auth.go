package auth

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleParticipant Role = "participant"
)

const issuer = "konkatsu-api"

var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TokenClaims is what handlers read back from the gin context after RequireRole.
type TokenClaims struct {
	Role          Role      `json:"role"`
	PartyID       uuid.UUID `json:"party_id,omitempty"`
	ParticipantID uuid.UUID `json:"participant_id,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens for both roles.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (i *Issuer) sign(claims *TokenClaims, subject string) (string, error) {
	now := i.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		ID:        uuid.NewString(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (i *Issuer) IssueAdminToken() (string, error) {
	return i.sign(&TokenClaims{Role: RoleAdmin}, string(RoleAdmin))
}

func (i *Issuer) IssueParticipantToken(partyID, participantID uuid.UUID) (string, error) {
	if partyID == uuid.Nil || participantID == uuid.Nil {
		return "", fmt.Errorf("party and participant ids are required")
	}
	return i.sign(&TokenClaims{
		Role:          RoleParticipant,
		PartyID:       partyID,
		ParticipantID: participantID,
	}, participantID.String())
}

func (i *Issuer) Parse(raw string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	switch claims.Role {
	case RoleAdmin:
	case RoleParticipant:
		if claims.PartyID == uuid.Nil || claims.ParticipantID == uuid.Nil {
			return nil, fmt.Errorf("%w: participant token without ids", ErrInvalidToken)
		}
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	return claims, nil
}

// VerifyAdminPassword compares against the configured bcrypt hash. An
// empty hash disables admin login altogether.
func VerifyAdminPassword(hash, password string) error {
	if hash == "" || password == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword produces a value suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// AccessURL is the link encoded in a participant's QR code.
func AccessURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/access?token=" + url.QueryEscape(token)
}
