package repository

import (
	"context"

	"github.com/jhoicas/fleetsync-api/internal/domain/entity"
)

// ConfigRepository define el puerto de persistencia para la configuración por compañía.
type ConfigRepository interface {
	// GetByCode devuelve la configuración para el código dado. nil si no existe.
	GetByCode(ctx context.Context, code string) (*entity.CompanyConfig, error)

	// Upsert crea o reemplaza la configuración de una compañía.
	Upsert(ctx context.Context, cfg *entity.CompanyConfig) error

	List(ctx context.Context) ([]*entity.CompanyConfig, error)
}
