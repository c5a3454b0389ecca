package repository

import (
	"context"
	"time"

	"github.com/jhoicas/fleetsync-api/internal/domain/entity"
)

// CredentialRepository define el puerto de persistencia para la conexión OAuth con QuickBooks.
type CredentialRepository interface {
	// Get devuelve la credencial vigente (la conexión más reciente). nil si no hay ninguna.
	Get(ctx context.Context) (*entity.Credential, error)

	Save(ctx context.Context, cred *entity.Credential) error

	// UpdateTokens rota el par access/refresh y la expiración en una sola escritura.
	// Si el refresh contra Intuit falla, este método no debe llamarse: la credencial
	// almacenada queda intacta (sin escrituras parciales).
	UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiry time.Time) error
}
