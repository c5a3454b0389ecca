package qbo

import "github.com/shopspring/decimal"

// Objetos mínimos del API v3 de QuickBooks Online: solo los campos que el
// motor de sincronización necesita para publicar una factura. No es un SDK
// completo del esquema de Intuit.

// Session es el handle de corta vida con el que se hace cada llamada remota.
// Se obtiene del TokenManager al inicio del lote y se pasa explícitamente;
// no hay estado mutable compartido entre lotes.
type Session struct {
	AccessToken  string
	RealmID      string
	MinorVersion int
}

// Ref referencia por id a otro objeto de QuickBooks.
type Ref struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

// EmailAddr dirección de correo.
type EmailAddr struct {
	Address string `json:"Address,omitempty"`
}

// Phone teléfono en formato libre.
type Phone struct {
	FreeFormNumber string `json:"FreeFormNumber,omitempty"`
}

// Address dirección física (facturación).
type Address struct {
	Line1                  string `json:"Line1,omitempty"`
	Line2                  string `json:"Line2,omitempty"`
	City                   string `json:"City,omitempty"`
	CountrySubDivisionCode string `json:"CountrySubDivisionCode,omitempty"`
	PostalCode             string `json:"PostalCode,omitempty"`
	Country                string `json:"Country,omitempty"`
}

// Customer cliente en QuickBooks.
type Customer struct {
	ID               string     `json:"Id,omitempty"`
	SyncToken        string     `json:"SyncToken,omitempty"`
	DisplayName      string     `json:"DisplayName"`
	GivenName        string     `json:"GivenName,omitempty"`
	FamilyName       string     `json:"FamilyName,omitempty"`
	PrimaryEmailAddr *EmailAddr `json:"PrimaryEmailAddr,omitempty"`
	PrimaryPhone     *Phone     `json:"PrimaryPhone,omitempty"`
	BillAddr         *Address   `json:"BillAddr,omitempty"`
}

// Item ítem del catálogo (servicio o categoría).
type Item struct {
	ID               string `json:"Id,omitempty"`
	SyncToken        string `json:"SyncToken,omitempty"`
	Name             string `json:"Name"`
	Type             string `json:"Type,omitempty"` // "Service" | "Category"
	SubItem          bool   `json:"SubItem,omitempty"`
	ParentRef        *Ref   `json:"ParentRef,omitempty"`
	IncomeAccountRef *Ref   `json:"IncomeAccountRef,omitempty"`
	SalesTaxCodeRef  *Ref   `json:"SalesTaxCodeRef,omitempty"`
	Taxable          bool   `json:"Taxable,omitempty"`
}

// Account cuenta contable.
type Account struct {
	ID             string `json:"Id,omitempty"`
	Name           string `json:"Name"`
	AccountType    string `json:"AccountType,omitempty"`    // "Income"
	AccountSubType string `json:"AccountSubType,omitempty"` // "ServiceFeeIncome"
}

// TaxRate tasa de impuesto.
type TaxRate struct {
	ID        string          `json:"Id,omitempty"`
	Name      string          `json:"Name"`
	RateValue decimal.Decimal `json:"RateValue"`
	Active    bool            `json:"Active"`
	AgencyRef *Ref            `json:"AgencyRef,omitempty"`
}

// TaxCode código de impuesto (agrupa tasas).
type TaxCode struct {
	ID     string `json:"Id,omitempty"`
	Name   string `json:"Name"`
	Active bool   `json:"Active"`
}

// TaxAgency agencia recaudadora.
type TaxAgency struct {
	ID          string `json:"Id,omitempty"`
	DisplayName string `json:"DisplayName"`
}

// Term término de pago.
type Term struct {
	ID   string `json:"Id,omitempty"`
	Name string `json:"Name"`
}

// CompanyInfo datos del tenant; Country decide la rama jurisdiccional del
// tratamiento de impuestos por línea.
type CompanyInfo struct {
	ID          string `json:"Id,omitempty"`
	CompanyName string `json:"CompanyName,omitempty"`
	Country     string `json:"Country,omitempty"`
}

// SalesItemLineDetail detalle de una línea de venta.
type SalesItemLineDetail struct {
	ItemRef    Ref              `json:"ItemRef"`
	Qty        *decimal.Decimal `json:"Qty,omitempty"`
	UnitPrice  *decimal.Decimal `json:"UnitPrice,omitempty"`
	TaxCodeRef *Ref             `json:"TaxCodeRef,omitempty"`
}

// DiscountLineDetail detalle de una línea de descuento porcentual.
type DiscountLineDetail struct {
	PercentBased    bool            `json:"PercentBased"`
	DiscountPercent decimal.Decimal `json:"DiscountPercent"`
}

// Line línea de factura. DetailType discrimina cuál de los detalles aplica.
type Line struct {
	Amount              decimal.Decimal      `json:"Amount"`
	Description         string               `json:"Description,omitempty"`
	DetailType          string               `json:"DetailType"`
	SalesItemLineDetail *SalesItemLineDetail `json:"SalesItemLineDetail,omitempty"`
	DiscountLineDetail  *DiscountLineDetail  `json:"DiscountLineDetail,omitempty"`
}

// DetailType válidos para Line.
const (
	DetailTypeSalesItem = "SalesItemLineDetail"
	DetailTypeDiscount  = "DiscountLineDetail"
)

// TaxLineDetail detalle de una línea del bloque TxnTaxDetail.
type TaxLineDetail struct {
	TaxRateRef Ref `json:"TaxRateRef"`
}

// TaxLine línea del bloque agregado de impuestos.
type TaxLine struct {
	DetailType    string        `json:"DetailType"` // "TaxLineDetail"
	TaxLineDetail TaxLineDetail `json:"TaxLineDetail"`
}

// TxnTaxDetail bloque agregado de impuestos de la factura (jurisdicciones que
// no direccionan el impuesto por tax code de línea).
type TxnTaxDetail struct {
	TxnTaxCodeRef *Ref             `json:"TxnTaxCodeRef,omitempty"`
	TotalTax      *decimal.Decimal `json:"TotalTax,omitempty"`
	TaxLine       []TaxLine        `json:"TaxLine,omitempty"`
}

// Invoice factura.
type Invoice struct {
	ID           string           `json:"Id,omitempty"`
	SyncToken    string           `json:"SyncToken,omitempty"`
	DocNumber    string           `json:"DocNumber,omitempty"`
	TxnDate      string           `json:"TxnDate,omitempty"` // YYYY-MM-DD
	DueDate      string           `json:"DueDate,omitempty"`
	CustomerRef  Ref              `json:"CustomerRef"`
	SalesTermRef *Ref             `json:"SalesTermRef,omitempty"`
	BillAddr     *Address         `json:"BillAddr,omitempty"`
	Line         []Line           `json:"Line"`
	TxnTaxDetail *TxnTaxDetail    `json:"TxnTaxDetail,omitempty"`
	TotalAmt     *decimal.Decimal `json:"TotalAmt,omitempty"`
	PrivateNote  string           `json:"PrivateNote,omitempty"`
}
