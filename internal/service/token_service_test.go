package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srbenoit/mathops-db-sub013/internal/models"
	appErrors "github.com/srbenoit/mathops-db-sub013/pkg/errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "s3cret", Issuer: "mathops", Audience: []string{"deadlines"}, Expiry: time.Hour})

	token, expires, err := svc.Issue(testStudent, models.RoleStudent)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, testStudent, claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestTokenRejections(t *testing.T) {
	issuer := NewTokenService(TokenConfig{Secret: "s3cret", Issuer: "mathops"})
	token, _, err := issuer.Issue(testStudent, models.RoleAdviser)
	require.NoError(t, err)

	wrongSecret := NewTokenService(TokenConfig{Secret: "other", Issuer: "mathops"})
	_, err = wrongSecret.ValidateToken(token)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	wrongIssuer := NewTokenService(TokenConfig{Secret: "s3cret", Issuer: "elsewhere"})
	_, err = wrongIssuer.ValidateToken(token)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	later := NewTokenService(TokenConfig{Secret: "s3cret", Issuer: "mathops"})
	later.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = later.ValidateToken(token)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	_, err = issuer.ValidateToken("not-a-token")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
