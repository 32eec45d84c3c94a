package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erp-api/internal/models"
	appErrors "github.com/noah-isme/erp-api/pkg/errors"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "erp"})
	token, err := svc.Issue(models.JWTClaims{UserID: "user-1", Role: models.RoleManager, OrganizationID: "org-1"}, time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "org-1", claims.OrganizationID)
	assert.Equal(t, models.RoleManager, claims.Role)
}

func TestTokenServiceRejects(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "erp"})

	expired, err := svc.Issue(models.JWTClaims{UserID: "user-1", OrganizationID: "org-1"}, -time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)

	other := NewTokenService(TokenConfig{Secret: "other", Issuer: "erp"})
	forged, err := other.Issue(models.JWTClaims{UserID: "user-1", OrganizationID: "org-1"}, time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateToken(forged)
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)

	noOrg, err := svc.Issue(models.JWTClaims{UserID: "user-1"}, time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateToken(noOrg)
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
