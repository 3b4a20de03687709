package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/visitordesk/visitor-service/internal/domain"
)

// ErrNoSecret is returned when a codec is built without a signing secret.
var ErrNoSecret = errors.New("no token secret configured")

// FailureKind classifies why a token was rejected.
type FailureKind int

const (
	// FailureInvalid covers malformed tokens, bad signatures and unexpected algorithms.
	FailureInvalid FailureKind = iota
	// FailureExpired means the signature verified but exp is in the past.
	FailureExpired
)

// VerifyError is returned by Codec.Verify.
type VerifyError struct {
	Kind FailureKind
	Err  error
}

func (e *VerifyError) Error() string {
	if e.Kind == FailureExpired {
		return "token expired: " + e.Err.Error()
	}
	return "invalid token: " + e.Err.Error()
}

func (e *VerifyError) Unwrap() error {
	return e.Err
}

// Claims describes the JWT payload.
type Claims struct {
	SubjectID     int64       `json:"subject_id"`
	Authenticated bool        `json:"authenticated"`
	Username      string      `json:"username,omitempty"`
	Role          domain.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HS256 tokens with a single shared secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec builds a codec. An empty secret is a configuration error.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Codec{secret: []byte(secret), now: time.Now}, nil
}

// WithClock returns a copy of the codec that reads time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	clone := *c
	clone.now = now
	return &clone
}

// Issue signs claims with an expiry ttl from now. A non-positive ttl yields an already expired token.
func (c *Codec) Issue(claims Claims, ttl time.Duration) (string, time.Time, error) {
	if c == nil || len(c.secret) == 0 {
		return "", time.Time{}, ErrNoSecret
	}
	issuedAt := c.now()
	expiresAt := issuedAt.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry and returns the decoded claims.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	if c == nil || len(c.secret) == 0 {
		return nil, ErrNoSecret
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &VerifyError{Kind: FailureExpired, Err: err}
		}
		return nil, &VerifyError{Kind: FailureInvalid, Err: err}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, &VerifyError{Kind: FailureInvalid, Err: errors.New("invalid token claims")}
	}
	return claims, nil
}

// IdentityFromClaims converts verified claims into a request identity.
func IdentityFromClaims(claims *Claims) *Identity {
	id := &Identity{
		SubjectID:     claims.SubjectID,
		Username:      claims.Username,
		Authenticated: claims.Authenticated,
		Role:          claims.Role,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id
}
