// Package tax valida los impuestos declarados en una factura FleetFixy contra
// la configuración de impuestos vigente en QuickBooks, antes de cualquier
// mutación remota. Es dominio puro: sin I/O, sin estado.
package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LaborTaxName nombre sintético del impuesto de mano de obra cuando difiere del de repuestos.
const LaborTaxName = "Labor Tax"

// Declared es un impuesto declarado por la factura entrante (código, tasa y monto
// calculados por FleetFixy; aquí solo se comparan, nunca se recalculan).
type Declared struct {
	Name   string
	Code   string
	Rate   decimal.Decimal // porcentaje, ej: 5.00
	Amount decimal.Decimal
}

// LedgerRate es una tasa de impuesto tal como existe en QuickBooks.
type LedgerRate struct {
	ID     string
	Name   string
	Rate   decimal.Decimal // RateValue de QuickBooks
	Active bool
}

// Mismatch describe una discrepancia entre un impuesto declarado y QuickBooks.
// Se produce y se reporta; nunca se persiste como entidad propia.
type Mismatch struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Tax         string `json:"tax"`              // tasa declarada, formateada "5.00 %"
	TaxInQB     string `json:"taxInQB,omitempty"` // tasa en QuickBooks, si el impuesto existe
	Description string `json:"description"`
}

// DeclaredFromInvoice construye la lista efectiva de impuestos de una factura:
// todos los impuestos de repuestos más una entrada sintética "Labor Tax" cuando
// el impuesto de mano de obra no es el mismo que el de repuestos y su
// porcentaje es positivo.
func DeclaredFromInvoice(partsTax []Declared, laborSameAsPart bool, laborRate, laborAmount decimal.Decimal) []Declared {
	taxes := make([]Declared, 0, len(partsTax)+1)
	taxes = append(taxes, partsTax...)
	if !laborSameAsPart && laborRate.IsPositive() {
		taxes = append(taxes, Declared{
			Name:   LaborTaxName,
			Code:   LaborTaxName,
			Rate:   laborRate,
			Amount: laborAmount,
		})
	}
	return taxes
}

// FindMismatches compara cada impuesto declarado con las tasas activas de
// QuickBooks. La búsqueda es por nombre exacto. Un impuesto ausente o con tasa
// distinta produce un Mismatch; la comparación de tasas se hace sobre el valor
// formateado a dos decimales, que es la precisión con la que QuickBooks las
// expone.
//
// Resultado vacío = la factura puede enviarse. Resultado no vacío = la factura
// debe bloquearse sin crear cliente, líneas ni factura remota.
func FindMismatches(declared []Declared, rates []LedgerRate) []Mismatch {
	active := make(map[string]LedgerRate, len(rates))
	for _, r := range rates {
		if r.Active {
			active[r.Name] = r
		}
	}

	var mismatches []Mismatch
	for _, d := range declared {
		r, ok := active[d.Name]
		if !ok {
			mismatches = append(mismatches, Mismatch{
				Name:        d.Name,
				Code:        d.Code,
				Tax:         FormatRate(d.Rate),
				Description: fmt.Sprintf("%s not found in QuickBooks.", d.Code),
			})
			continue
		}
		if d.Rate.StringFixed(2) != r.Rate.StringFixed(2) {
			mismatches = append(mismatches, Mismatch{
				Name:        d.Name,
				Code:        d.Code,
				Tax:         FormatRate(d.Rate),
				TaxInQB:     FormatRate(r.Rate),
				Description: "Tax rate mismatch between FleetFixy and QuickBooks.",
			})
		}
	}
	return mismatches
}

// FormatRate formatea una tasa como la reporta la respuesta al caller: "5.00 %".
func FormatRate(rate decimal.Decimal) string {
	return rate.StringFixed(2) + " %"
}
