package entity

import "time"

// CompanyConfig preferencias de facturación por compañía FleetFixy.
// El motor de sincronización la consume en modo lectura; se asume inmutable
// durante el procesamiento de un lote.
type CompanyConfig struct {
	Code                string // código de configuración (qbCompanyConfigCode)
	Name                string
	Terms               string // nombre del término de pago en QuickBooks (ej: "Net 30")
	KeepQBInvoiceNumber bool   // true: QuickBooks asigna el DocNumber; false: se usa el workOrderId
	SalesTaxAgency      string // agencia de impuestos para crear tax codes de tasa cero
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
