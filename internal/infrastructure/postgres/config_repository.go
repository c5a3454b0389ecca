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

var _ repository.ConfigRepository = (*ConfigRepo)(nil)

// ConfigRepo implementación de ConfigRepository (usable con pool o tx).
type ConfigRepo struct {
	q Querier
}

// NewConfigRepository construye el adaptador. Pasar pool o tx (Querier).
func NewConfigRepository(q Querier) *ConfigRepo {
	return &ConfigRepo{q: q}
}

// GetByCode obtiene la configuración de una compañía. nil si no existe.
func (r *ConfigRepo) GetByCode(ctx context.Context, code string) (*entity.CompanyConfig, error) {
	query := `
		SELECT code, name, terms, keep_qb_invoice_number, sales_tax_agency, created_at, updated_at
		FROM company_configs WHERE code = $1`
	var c entity.CompanyConfig
	err := r.q.QueryRow(ctx, query, code).Scan(
		&c.Code, &c.Name, &c.Terms, &c.KeepQBInvoiceNumber, &c.SalesTaxAgency, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company config: %w", err)
	}
	return &c, nil
}

// Upsert crea o reemplaza la configuración de una compañía (clave: code).
func (r *ConfigRepo) Upsert(ctx context.Context, cfg *entity.CompanyConfig) error {
	now := time.Now()
	query := `
		INSERT INTO company_configs (code, name, terms, keep_qb_invoice_number, sales_tax_agency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			terms = EXCLUDED.terms,
			keep_qb_invoice_number = EXCLUDED.keep_qb_invoice_number,
			sales_tax_agency = EXCLUDED.sales_tax_agency,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, cfg.Code, cfg.Name, cfg.Terms, cfg.KeepQBInvoiceNumber, cfg.SalesTaxAgency, now)
	if err != nil {
		return fmt.Errorf("upsert company config: %w", err)
	}
	return nil
}

// List devuelve todas las configuraciones registradas.
func (r *ConfigRepo) List(ctx context.Context) ([]*entity.CompanyConfig, error) {
	query := `
		SELECT code, name, terms, keep_qb_invoice_number, sales_tax_agency, created_at, updated_at
		FROM company_configs ORDER BY code`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list company configs: %w", err)
	}
	defer rows.Close()
	var list []*entity.CompanyConfig
	for rows.Next() {
		var c entity.CompanyConfig
		if err := rows.Scan(&c.Code, &c.Name, &c.Terms, &c.KeepQBInvoiceNumber, &c.SalesTaxAgency, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company config: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
