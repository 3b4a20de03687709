package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitordesk/visitor-service/internal/domain"
	apperrors "github.com/visitordesk/visitor-service/pkg/util/errorutil"
)

func requireDomainError(t *testing.T, err error) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	de, ok := err.(*apperrors.DomainError)
	require.True(t, ok, "expected *DomainError, got %T", err)
	return de
}

func TestResolveValidToken(t *testing.T) {
	codec := newTestCodec(t)
	token, _, err := codec.Issue(Claims{SubjectID: 7, Authenticated: true, Role: domain.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	id, err := NewResolver(codec).Resolve("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id.SubjectID)
	assert.True(t, id.Authenticated)
	assert.Equal(t, domain.RoleAdmin, id.Role)
	assert.False(t, id.Anonymous)
	assert.False(t, id.ExpiresAt.IsZero())
}

func TestResolveMissingToken(t *testing.T) {
	resolver := NewResolver(newTestCodec(t))

	for _, header := range []string{"", "   ", "Bearer", "Bearer   "} {
		_, err := resolver.Resolve(header)
		de := requireDomainError(t, err)
		assert.Equal(t, http.StatusForbidden, de.HTTPStatus, "header %q", header)
		assert.Equal(t, CodeNoTokenProvided, de.Code, "header %q", header)
	}
}

func TestResolveDistinguishesExpiredFromInvalid(t *testing.T) {
	codec := newTestCodec(t)
	resolver := NewResolver(codec)

	expired, _, err := codec.Issue(Claims{SubjectID: 7, Authenticated: true}, -time.Minute)
	require.NoError(t, err)

	_, err = resolver.Resolve("Bearer " + expired)
	de := requireDomainError(t, err)
	assert.Equal(t, CodeTokenExpired, de.Code)

	_, err = resolver.Resolve("Bearer garbage.token.value")
	de = requireDomainError(t, err)
	assert.Equal(t, CodeInvalidToken, de.Code)
	assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
}

func TestResolveWithoutCodecIsConfigurationFailure(t *testing.T) {
	_, err := NewResolver(nil).Resolve("Bearer anything")

	de := requireDomainError(t, err)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Equal(t, apperrors.CodeNoSecretDefined, de.Code)
	assert.True(t, IsConfigurationFailure(err))
}
