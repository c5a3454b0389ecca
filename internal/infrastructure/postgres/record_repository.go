package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/fleetsync-api/internal/domain/entity"
	"github.com/jhoicas/fleetsync-api/internal/domain/repository"
)

var _ repository.RecordRepository = (*RecordRepo)(nil)

// RecordRepo implementación del espejo local de facturas. La clave
// (work_order_id, company_code) tiene índice único: los reintentos hacen
// ON CONFLICT DO UPDATE, nunca insert ciego, y el motor nunca borra filas.
type RecordRepo struct {
	q Querier
}

// NewRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecordRepository(q Querier) *RecordRepo {
	return &RecordRepo{q: q}
}

const recordColumns = `id, work_order_id, company_code, qb_invoice_id, doc_number,
	status, invoice_date, processed_at, error_message, created_at, updated_at`

func scanRecord(row pgx.Row) (*entity.SyncRecord, error) {
	var rec entity.SyncRecord
	err := row.Scan(
		&rec.ID, &rec.WorkOrderID, &rec.CompanyCode, &rec.QBInvoiceID, &rec.DocNumber,
		&rec.Status, &rec.InvoiceDate, &rec.ProcessedAt, &rec.ErrorMessage,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindByWorkOrder devuelve el registro previo del work order, o nil si nunca
// se procesó para esa compañía.
func (r *RecordRepo) FindByWorkOrder(ctx context.Context, workOrderID, companyCode string) (*entity.SyncRecord, error) {
	query := `SELECT ` + recordColumns + `
		FROM sync_records WHERE work_order_id = $1 AND company_code = $2`
	rec, err := scanRecord(r.q.QueryRow(ctx, query, workOrderID, companyCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sync record: %w", err)
	}
	return rec, nil
}

// UpsertSuccess registra un envío exitoso: id y DocNumber remotos, estado
// resuelto y error_message vacío.
func (r *RecordRepo) UpsertSuccess(ctx context.Context, workOrderID, companyCode, qbInvoiceID, docNumber, status string, invoiceDate time.Time) (*entity.SyncRecord, error) {
	now := time.Now()
	query := `
		INSERT INTO sync_records (id, work_order_id, company_code, qb_invoice_id, doc_number,
			status, invoice_date, processed_at, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '', $8, $8)
		ON CONFLICT (work_order_id, company_code) DO UPDATE SET
			qb_invoice_id = EXCLUDED.qb_invoice_id,
			doc_number = EXCLUDED.doc_number,
			status = EXCLUDED.status,
			invoice_date = EXCLUDED.invoice_date,
			processed_at = EXCLUDED.processed_at,
			error_message = '',
			updated_at = EXCLUDED.updated_at
		RETURNING ` + recordColumns
	rec, err := scanRecord(r.q.QueryRow(ctx, query,
		uuid.New().String(), workOrderID, companyCode, qbInvoiceID, docNumber, status, invoiceDate, now,
	))
	if err != nil {
		return nil, fmt.Errorf("upsert sync record: %w", err)
	}
	return rec, nil
}

// UpsertFailure registra un intento fallido: estado FAILURE, mensaje de error
// y sin id remoto (el intento no dejó factura confirmada).
func (r *RecordRepo) UpsertFailure(ctx context.Context, workOrderID, companyCode, errorMessage string, invoiceDate time.Time) (*entity.SyncRecord, error) {
	now := time.Now()
	query := `
		INSERT INTO sync_records (id, work_order_id, company_code, qb_invoice_id, doc_number,
			status, invoice_date, processed_at, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, '', '', $4, $5, $6, $7, $6, $6)
		ON CONFLICT (work_order_id, company_code) DO UPDATE SET
			qb_invoice_id = '',
			doc_number = '',
			status = EXCLUDED.status,
			invoice_date = EXCLUDED.invoice_date,
			processed_at = EXCLUDED.processed_at,
			error_message = EXCLUDED.error_message,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + recordColumns
	rec, err := scanRecord(r.q.QueryRow(ctx, query,
		uuid.New().String(), workOrderID, companyCode, entity.StatusFailure, invoiceDate, now, errorMessage,
	))
	if err != nil {
		return nil, fmt.Errorf("upsert sync record (failure): %w", err)
	}
	return rec, nil
}

// ListByCompany lista registros de una compañía con paginación (auditoría).
func (r *RecordRepo) ListByCompany(ctx context.Context, companyCode string, limit, offset int) ([]*entity.SyncRecord, error) {
	query := `SELECT ` + recordColumns + `
		FROM sync_records WHERE company_code = $1
		ORDER BY processed_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyCode, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sync records: %w", err)
	}
	defer rows.Close()
	var list []*entity.SyncRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sync record: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
