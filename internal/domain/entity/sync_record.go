package entity

import "time"

// Estados del registro de sincronización por work order.
const (
	StatusCreated              = "CREATED"                      // primera factura creada en QuickBooks
	StatusUpdated              = "UPDATED"                      // factura anterior reemplazada (delete + create)
	StatusOldInvoiceNotFound   = "OLD INVOICE NOT FOUND"        // el id previo del caller no existe en QuickBooks
	StatusDuplicateOldInvoices = "DUPLICATE OLD INVOICES FOUND" // existe una factura remota de la que no hay registro local
	StatusFailure              = "FAILURE"                      // el intento falló; ErrorMessage tiene el detalle
)

// SyncRecord es el espejo local de lo último que le dijimos a QuickBooks por
// cada (workOrderId, companyCode). Cada intento hace upsert sobre esa clave,
// nunca insert ciego, de modo que los reintentos sobreescriben en lugar de
// acumular. El motor nunca borra registros (sirven de auditoría).
type SyncRecord struct {
	ID           string
	WorkOrderID  string
	CompanyCode  string // qbCompanyConfigCode
	QBInvoiceID  string // id de la factura en QuickBooks ("" si el intento falló)
	DocNumber    string // DocNumber asignado por QuickBooks
	Status       string
	InvoiceDate  time.Time
	ProcessedAt  time.Time // último intento de procesamiento
	ErrorMessage string    // vacío en éxito
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
