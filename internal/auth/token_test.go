package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitordesk/visitor-service/internal/domain"
)

const testSecret = "unit-test-secret"

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec(testSecret)
	require.NoError(t, err)
	return codec
}

func TestNewCodecRequiresSecret(t *testing.T) {
	codec, err := NewCodec("")
	assert.Nil(t, codec)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	cases := []Claims{
		{SubjectID: 7, Authenticated: true, Role: domain.RoleAdmin, Username: "ops"},
		{SubjectID: 1, Authenticated: true, Role: domain.RoleSuperAdmin},
		{SubjectID: 42, Authenticated: true},
		{SubjectID: 3, Authenticated: false},
	}

	for _, in := range cases {
		token, exp, err := codec.Issue(in, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 3, len(strings.Split(token, ".")))
		assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 2*time.Second)

		out, err := codec.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, in.SubjectID, out.SubjectID)
		assert.Equal(t, in.Authenticated, out.Authenticated)
		assert.Equal(t, in.Role, out.Role)
		assert.Equal(t, in.Username, out.Username)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	codec := newTestCodec(t)

	for _, ttl := range []time.Duration{0, -time.Minute} {
		token, _, err := codec.Issue(Claims{SubjectID: 7, Authenticated: true}, ttl)
		require.NoError(t, err)

		_, err = codec.Verify(token)
		var verr *VerifyError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, FailureExpired, verr.Kind)
	}
}

func TestVerifyExpiresWithClock(t *testing.T) {
	codec := newTestCodec(t)
	token, _, err := codec.Issue(Claims{SubjectID: 7, Authenticated: true}, 7*24*time.Hour)
	require.NoError(t, err)

	later := codec.WithClock(func() time.Time { return time.Now().Add(8 * 24 * time.Hour) })
	_, err = later.Verify(token)

	var verr *VerifyError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, FailureExpired, verr.Kind)
}

func TestVerifyTamperedSignature(t *testing.T) {
	codec := newTestCodec(t)
	token, _, err := codec.Issue(Claims{SubjectID: 7, Authenticated: true, Role: domain.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	sigStart := strings.LastIndex(token, ".") + 1
	for i := sigStart; i < len(token); i++ {
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]

		_, err := codec.Verify(tampered)
		var verr *VerifyError
		require.True(t, errors.As(err, &verr), "byte %d accepted", i)
		assert.Equal(t, FailureInvalid, verr.Kind)
	}
}

func TestVerifyRejectsForeignSecretAndGarbage(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewCodec("another-secret")
	require.NoError(t, err)

	token, _, err := other.Issue(Claims{SubjectID: 1, Authenticated: true}, time.Hour)
	require.NoError(t, err)

	for _, candidate := range []string{token, "not-a-token", "a.b.c", ""} {
		_, err := codec.Verify(candidate)
		var verr *VerifyError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, FailureInvalid, verr.Kind)
	}
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	codec := newTestCodec(t)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		SubjectID:     1,
		Authenticated: true,
		Role:          domain.RoleSuperAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	var verr *VerifyError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, FailureInvalid, verr.Kind)
}
