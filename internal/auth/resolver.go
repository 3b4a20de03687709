package auth

import (
	"errors"
	"strings"

	apperrors "github.com/visitordesk/visitor-service/pkg/util/errorutil"
)

// Failure codes produced while resolving a bearer token.
const (
	CodeNoTokenProvided = "NO_TOKEN_PROVIDED"
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeInvalidToken    = "INVALID_TOKEN"
)

// Resolver turns an Authorization header into an Identity.
type Resolver struct {
	codec *Codec
}

// NewResolver constructs a resolver. A nil codec makes every resolution fail
// with a configuration error.
func NewResolver(codec *Codec) *Resolver {
	return &Resolver{codec: codec}
}

// Resolve extracts the token after the scheme word, verifies it and returns
// the caller identity. Every failure is a *errorutil.DomainError.
func (r *Resolver) Resolve(authorization string) (*Identity, error) {
	if r == nil || r.codec == nil {
		return nil, apperrors.NewConfigurationError(apperrors.CodeNoSecretDefined, "Token secret is not configured")
	}

	token := bearerToken(authorization)
	if token == "" {
		return nil, apperrors.NewForbidden("No token provided", CodeNoTokenProvided)
	}

	claims, err := r.codec.Verify(token)
	if err != nil {
		return nil, verifyFailure(err)
	}
	return IdentityFromClaims(claims), nil
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	_, token, found := strings.Cut(header, " ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}

func verifyFailure(err error) error {
	if errors.Is(err, ErrNoSecret) {
		return apperrors.NewConfigurationError(apperrors.CodeNoSecretDefined, "Token secret is not configured")
	}
	var verr *VerifyError
	if errors.As(err, &verr) && verr.Kind == FailureExpired {
		de := apperrors.NewForbidden("Token expired", CodeTokenExpired)
		de.Err = err
		return de
	}
	de := apperrors.NewForbidden("Invalid token", CodeInvalidToken)
	de.Err = err
	return de
}

// IsConfigurationFailure reports whether err stems from a broken deployment
// rather than from the caller's credentials.
func IsConfigurationFailure(err error) bool {
	var de *apperrors.DomainError
	return errors.As(err, &de) && de.Code == apperrors.CodeNoSecretDefined
}
