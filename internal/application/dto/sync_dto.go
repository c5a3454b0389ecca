package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fleetsync-api/internal/domain/tax"
)

// PushInvoicesRequest body para POST /api/qb/invoices. Lote de facturas de
// órdenes de trabajo más el código de configuración de la compañía destino.
type PushInvoicesRequest struct {
	CompanyConfigCode string           `json:"qbCompanyConfigCode"`
	Invoices          []InvoiceRequest `json:"invoiceList"`
}

// InvoiceRequest una factura generada desde una orden de trabajo. Los montos
// ya vienen calculados por el llamador; el motor no recalcula totales.
type InvoiceRequest struct {
	WorkOrderID string `json:"workOrderId"`
	To          Party  `json:"to"`   // parte facturada
	From        Party  `json:"from"` // taller emisor

	Lines []InvoiceLine `json:"lines"`

	PartsTax           []DeclaredTax   `json:"partsTax"`
	LaborTaxSameAsPart bool            `json:"laborTaxSameAsPart"`
	LaborTaxPercentage decimal.Decimal `json:"laborTaxPercentage"`
	LaborTax           decimal.Decimal `json:"laborTax"`

	DiscountPercentage *decimal.Decimal `json:"discountPercentage,omitempty"`

	InvoiceDate string          `json:"invoiceDate"` // YYYY-MM-DD
	FinalTotal  decimal.Decimal `json:"finalTotal"`
	PONumber    string          `json:"PONumber,omitempty"`

	// Id de la factura remota anterior que el llamador conoce, si esto es un
	// reenvío. Puede estar desactualizado; el registro local tiene prioridad.
	QBInvoiceID string `json:"qbInvoiceId,omitempty"`
}

// Party descriptor de una de las partes de la factura.
type Party struct {
	Name        string  `json:"name"`
	FirstName   string  `json:"firstName,omitempty"`
	LastName    string  `json:"lastName,omitempty"`
	Email       string  `json:"email,omitempty"`
	MobilePhone string  `json:"mobilePhone,omitempty"`
	Address     Address `json:"address"`
}

// Address dirección postal en el formato del sistema de órdenes de trabajo.
type Address struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipcode"`
	Country string `json:"country"`
}

// InvoiceLine una sección de la factura con sus sublistas heterogéneas.
type InvoiceLine struct {
	Parts        []PartLine   `json:"parts,omitempty"`
	Labors       []LaborLine  `json:"labors,omitempty"`
	MiscCharges  []ChargeLine `json:"miscCharges,omitempty"`
	DisposalFees []ChargeLine `json:"disposalFees,omitempty"`
}

// PartLine repuesto facturado.
type PartLine struct {
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	TaxCode      string          `json:"taxCode,omitempty"`
}

// LaborLine mano de obra facturada.
type LaborLine struct {
	Description string          `json:"description,omitempty"`
	Hours       decimal.Decimal `json:"hours"`
	Rate        decimal.Decimal `json:"rate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// ChargeLine cargo misceláneo o tarifa de disposición (cantidad implícita 1).
type ChargeLine struct {
	Name        string          `json:"name,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// DeclaredTax impuesto declarado sobre la factura entrante.
type DeclaredTax struct {
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Tax       decimal.Decimal `json:"tax"` // porcentaje
	TaxAmount decimal.Decimal `json:"taxAmount"`
}

// PushInvoicesResponse respuesta del lote: un resultado por factura, en el
// mismo orden de entrada.
type PushInvoicesResponse struct {
	Message  string          `json:"message"`
	Invoices []InvoiceResult `json:"invoicesResponse"`
}

// InvoiceResult resultado individual. En éxito trae el id y número de
// documento remotos; en fallo el mensaje de error y, si aplica, el detalle de
// impuestos que no cuadran.
type InvoiceResult struct {
	WorkOrderID string         `json:"workOrderId"`
	Status      string         `json:"status"`
	Message     string         `json:"message"`
	QBInvoiceID string         `json:"qbInvoiceId,omitempty"`
	DocNumber   string         `json:"docNumber,omitempty"`
	TaxDetails  []tax.Mismatch `json:"taxDetails,omitempty"`
}

// SyncRecordResponse registro de conciliación para GET /api/qb/records.
type SyncRecordResponse struct {
	WorkOrderID string `json:"workOrderId"`
	CompanyCode string `json:"companyCode"`
	QBInvoiceID string `json:"qbInvoiceId,omitempty"`
	DocNumber   string `json:"docNumber,omitempty"`
	Status      string `json:"status"`
	InvoiceDate string `json:"invoiceDate"`
	ProcessedAt string `json:"processedAt"`
	Error       string `json:"error,omitempty"`
}

// CompanyConfigRequest body para crear o actualizar la configuración de una
// compañía.
type CompanyConfigRequest struct {
	Code                string `json:"code"`
	Name                string `json:"name"`
	Terms               string `json:"terms"`
	KeepQBInvoiceNumber bool   `json:"keepQBInvoiceNumber"`
	SalesTaxAgency      string `json:"salesTaxAgency"`
}

// CompanyConfigResponse configuración de compañía en respuestas.
type CompanyConfigResponse struct {
	Code                string `json:"code"`
	Name                string `json:"name"`
	Terms               string `json:"terms"`
	KeepQBInvoiceNumber bool   `json:"keepQBInvoiceNumber"`
	SalesTaxAgency      string `json:"salesTaxAgency"`
}
