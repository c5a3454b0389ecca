package sync

import (
	"context"
	"fmt"
	sdsync "sync"
	"time"

	"github.com/jhoicas/fleetsync-api/internal/domain"
	"github.com/jhoicas/fleetsync-api/internal/domain/repository"
	"github.com/jhoicas/fleetsync-api/internal/infrastructure/qbo"
	"github.com/jhoicas/fleetsync-api/pkg/logger"
)

// DefaultRefreshBuffer ventana de seguridad antes de la expiración del access
// token dentro de la cual se refresca proactivamente.
const DefaultRefreshBuffer = 2 * time.Minute

// TokenManager mantiene vigente la credencial OAuth contra QuickBooks. Es el
// único escritor de la credencial almacenada; el mutex da comportamiento
// single-flight para que dos lotes concurrentes no dupliquen el refresh (un
// refresh duplicado invalida el refresh token anterior en Intuit).
type TokenManager struct {
	creds  repository.CredentialRepository
	oauth  OAuthRefresher
	buffer time.Duration
	log    *logger.Logger

	mu  sdsync.Mutex
	now func() time.Time // inyectable en tests
}

// NewTokenManager construye el manager. buffer <= 0 usa DefaultRefreshBuffer.
func NewTokenManager(creds repository.CredentialRepository, oauth OAuthRefresher, buffer time.Duration, log *logger.Logger) *TokenManager {
	if buffer <= 0 {
		buffer = DefaultRefreshBuffer
	}
	return &TokenManager{
		creds:  creds,
		oauth:  oauth,
		buffer: buffer,
		log:    log.Component("token"),
		now:    time.Now,
	}
}

// Session devuelve un handle de sesión vigente para hablar con QuickBooks,
// refrescando el token si expira dentro de la ventana de seguridad. Si el
// refresh contra Intuit falla, la credencial almacenada queda intacta y se
// devuelve ErrTokenRefresh: sin sesión válida el lote completo debe abortarse.
func (m *TokenManager) Session(ctx context.Context) (qbo.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, err := m.creds.Get(ctx)
	if err != nil {
		return qbo.Session{}, fmt.Errorf("cargar credencial: %w", err)
	}
	if cred == nil {
		return qbo.Session{}, domain.ErrCredentialNotFound
	}

	if cred.ExpiresWithin(m.now(), m.buffer) {
		token, err := m.oauth.Refresh(ctx, cred.RefreshToken)
		if err != nil {
			m.log.Error().Err(err).Msg("refresh de token rechazado por Intuit")
			return qbo.Session{}, fmt.Errorf("%w: %v", domain.ErrTokenRefresh, err)
		}

		expiry := m.now().Add(time.Duration(token.ExpiresIn) * time.Second)
		if err := m.creds.UpdateTokens(ctx, cred.ID, token.AccessToken, token.RefreshToken, expiry); err != nil {
			return qbo.Session{}, fmt.Errorf("persistir tokens rotados: %w", err)
		}

		cred.AccessToken = token.AccessToken
		cred.RefreshToken = token.RefreshToken
		cred.TokenExpiry = expiry
		m.log.Info().Time("expiry", expiry).Msg("token de QuickBooks refrescado")
	}

	return qbo.Session{
		AccessToken:  cred.AccessToken,
		RealmID:      cred.RealmID,
		MinorVersion: cred.MinorVersion,
	}, nil
}
