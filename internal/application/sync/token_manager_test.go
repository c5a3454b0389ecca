package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fleetsync-api/internal/domain"
	"github.com/jhoicas/fleetsync-api/internal/domain/entity"
	"github.com/jhoicas/fleetsync-api/internal/infrastructure/qbo"
)

var fixedNow = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func newTokenManager(cred *entity.Credential, oauth *fakeOAuth) (*TokenManager, *fakeCredRepo) {
	repo := &fakeCredRepo{cred: cred}
	m := NewTokenManager(repo, oauth, 2*time.Minute, testLogger())
	m.now = func() time.Time { return fixedNow }
	return m, repo
}

func credentialExpiringIn(window time.Duration) *entity.Credential {
	return &entity.Credential{
		ID:           "cred-1",
		RealmID:      "4620816365",
		AccessToken:  "at-old",
		RefreshToken: "rt-old",
		TokenExpiry:  fixedNow.Add(window),
		MinorVersion: 65,
	}
}

// Token expirando dentro de la ventana de 2 minutos → exactamente un refresh,
// rotación persistida y sesión con el token nuevo.
func TestSession_RefrescaDentroDeLaVentana(t *testing.T) {
	oauth := &fakeOAuth{token: &qbo.TokenResponse{
		AccessToken: "at-new", RefreshToken: "rt-new", TokenType: "bearer", ExpiresIn: 3600,
	}}
	m, repo := newTokenManager(credentialExpiringIn(time.Minute), oauth)

	s, err := m.Session(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, oauth.calls, "debe haber exactamente un refresh")
	assert.Equal(t, 1, repo.updateCalls, "la rotación debe persistirse una vez")
	assert.Equal(t, "at-new", s.AccessToken)
	assert.Equal(t, "4620816365", s.RealmID)
	assert.Equal(t, 65, s.MinorVersion)
	assert.Equal(t, "rt-new", repo.cred.RefreshToken, "el refresh token rotado debe quedar almacenado")
	assert.Equal(t, fixedNow.Add(time.Hour), repo.cred.TokenExpiry)
}

// Token con más de 2 minutos de vida → cero refreshes, se usa el token vigente.
func TestSession_SinRefreshFueraDeLaVentana(t *testing.T) {
	oauth := &fakeOAuth{}
	m, repo := newTokenManager(credentialExpiringIn(10*time.Minute), oauth)

	s, err := m.Session(context.Background())
	require.NoError(t, err)

	assert.Zero(t, oauth.calls, "no debe haber refresh con el token aún vigente")
	assert.Zero(t, repo.updateCalls)
	assert.Equal(t, "at-old", s.AccessToken)
}

// Exactamente en el borde de la ventana también se refresca.
func TestSession_RefrescaEnElBordeDeLaVentana(t *testing.T) {
	oauth := &fakeOAuth{token: &qbo.TokenResponse{
		AccessToken: "at-new", RefreshToken: "rt-new", ExpiresIn: 3600,
	}}
	m, _ := newTokenManager(credentialExpiringIn(2*time.Minute), oauth)

	_, err := m.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, oauth.calls)
}

// Refresh rechazado por Intuit → ErrTokenRefresh y credencial intacta (sin
// escritura parcial).
func TestSession_FalloDeRefreshDejaCredencialIntacta(t *testing.T) {
	oauth := &fakeOAuth{err: errors.New("invalid_grant")}
	m, repo := newTokenManager(credentialExpiringIn(time.Minute), oauth)

	_, err := m.Session(context.Background())
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrTokenRefresh)
	assert.Zero(t, repo.updateCalls, "un refresh fallido no debe escribir nada")
	assert.Equal(t, "at-old", repo.cred.AccessToken)
	assert.Equal(t, "rt-old", repo.cred.RefreshToken)
}

// Sin conexión QuickBooks registrada → ErrCredentialNotFound.
func TestSession_SinCredencial(t *testing.T) {
	m, _ := newTokenManager(nil, &fakeOAuth{})

	_, err := m.Session(context.Background())
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
}
