package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/fleetsync-api/internal/domain/entity"
	"github.com/jhoicas/fleetsync-api/internal/domain/repository"
)

var _ repository.CredentialRepository = (*CredentialRepo)(nil)

// CredentialRepo implementación de CredentialRepository (usable con pool o tx).
type CredentialRepo struct {
	q Querier
}

// NewCredentialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCredentialRepository(q Querier) *CredentialRepo {
	return &CredentialRepo{q: q}
}

// Get devuelve la conexión más reciente, o nil si nunca se registró ninguna.
func (r *CredentialRepo) Get(ctx context.Context) (*entity.Credential, error) {
	query := `
		SELECT id, realm_id, access_token, refresh_token, token_type, token_expiry,
		       refresh_token_expires_in, is_refresh_token_expired, last_refreshed_at,
		       minor_version, created_at, updated_at
		FROM qb_credentials ORDER BY updated_at DESC LIMIT 1`
	var c entity.Credential
	err := r.q.QueryRow(ctx, query).Scan(
		&c.ID, &c.RealmID, &c.AccessToken, &c.RefreshToken, &c.TokenType, &c.TokenExpiry,
		&c.RefreshTokenExpiresIn, &c.IsRefreshTokenExpired, &c.LastRefreshedAt,
		&c.MinorVersion, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return &c, nil
}

// Save persiste una conexión nueva (o reemplaza la del mismo realm).
func (r *CredentialRepo) Save(ctx context.Context, cred *entity.Credential) error {
	query := `
		INSERT INTO qb_credentials (id, realm_id, access_token, refresh_token, token_type,
			token_expiry, refresh_token_expires_in, is_refresh_token_expired,
			last_refreshed_at, minor_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (realm_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_type = EXCLUDED.token_type,
			token_expiry = EXCLUDED.token_expiry,
			refresh_token_expires_in = EXCLUDED.refresh_token_expires_in,
			is_refresh_token_expired = EXCLUDED.is_refresh_token_expired,
			last_refreshed_at = EXCLUDED.last_refreshed_at,
			minor_version = EXCLUDED.minor_version,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		cred.ID, cred.RealmID, cred.AccessToken, cred.RefreshToken, cred.TokenType,
		cred.TokenExpiry, cred.RefreshTokenExpiresIn, cred.IsRefreshTokenExpired,
		cred.LastRefreshedAt, cred.MinorVersion, cred.CreatedAt, cred.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// UpdateTokens rota el par access/refresh y la expiración en una sola
// escritura. Solo se llama tras un refresh exitoso contra Intuit.
func (r *CredentialRepo) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiry time.Time) error {
	now := time.Now()
	query := `
		UPDATE qb_credentials
		SET access_token = $2, refresh_token = $3, token_expiry = $4,
		    last_refreshed_at = $5, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, accessToken, refreshToken, expiry, now)
	if err != nil {
		return fmt.Errorf("update tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update tokens: credencial %s no existe", id)
	}
	return nil
}
