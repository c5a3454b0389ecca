package repository

import (
	"context"
	"time"

	"github.com/jhoicas/fleetsync-api/internal/domain/entity"
)

// RecordRepository define el puerto de persistencia del espejo local de facturas
// (un registro por (workOrderId, companyCode)).
type RecordRepository interface {
	// FindByWorkOrder devuelve el registro previo para el work order, o nil si nunca se procesó.
	FindByWorkOrder(ctx context.Context, workOrderID, companyCode string) (*entity.SyncRecord, error)

	// UpsertSuccess registra un envío exitoso: id y DocNumber remotos, estado resuelto
	// y ErrorMessage vacío. Inserta o sobreescribe sobre la clave (workOrderId, companyCode).
	UpsertSuccess(ctx context.Context, workOrderID, companyCode, qbInvoiceID, docNumber, status string, invoiceDate time.Time) (*entity.SyncRecord, error)

	// UpsertFailure registra un intento fallido con el mensaje de error, estado FAILURE.
	UpsertFailure(ctx context.Context, workOrderID, companyCode, errorMessage string, invoiceDate time.Time) (*entity.SyncRecord, error)

	// ListByCompany lista registros de una compañía con paginación (auditoría).
	ListByCompany(ctx context.Context, companyCode string, limit, offset int) ([]*entity.SyncRecord, error)
}
