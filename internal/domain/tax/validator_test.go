package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/fleetsync-api/internal/domain/tax"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func declaredST(rate float64) []tax.Declared {
	return []tax.Declared{{
		Name:   "ST",
		Code:   "ST",
		Rate:   decimal.NewFromFloat(rate),
		Amount: decimal.NewFromFloat(1.00),
	}}
}

func qbRate(name string, rate float64, active bool) tax.LedgerRate {
	return tax.LedgerRate{ID: "1", Name: name, Rate: decimal.NewFromFloat(rate), Active: active}
}

// ──────────────────────────────────────────────────────────────────────────────
// FindMismatches
// ──────────────────────────────────────────────────────────────────────────────

// Tasa declarada igual a la activa en QuickBooks → sin discrepancias, la
// factura queda autorizada para envío.
func TestFindMismatches_TasaIgualNoProduceDiscrepancias(t *testing.T) {
	mismatches := tax.FindMismatches(declaredST(5.00), []tax.LedgerRate{qbRate("ST", 5.00, true)})
	assert.Empty(t, mismatches, "tasas iguales no deben producir discrepancias")
}

// Misma factura pero QuickBooks tiene "ST" al 7.00% → una discrepancia con
// ambas tasas formateadas a dos decimales.
func TestFindMismatches_TasaDistintaReportaAmbasTasas(t *testing.T) {
	mismatches := tax.FindMismatches(declaredST(5.00), []tax.LedgerRate{qbRate("ST", 7.00, true)})

	require.Len(t, mismatches, 1)
	m := mismatches[0]
	assert.Equal(t, "ST", m.Name)
	assert.Equal(t, "5.00 %", m.Tax, "la tasa declarada debe formatearse a dos decimales")
	assert.Equal(t, "7.00 %", m.TaxInQB, "la tasa de QuickBooks debe formatearse a dos decimales")
	assert.Contains(t, m.Description, "mismatch")
}

// Impuesto inexistente en QuickBooks → discrepancia "not found" sin TaxInQB.
func TestFindMismatches_ImpuestoAusenteReportaNotFound(t *testing.T) {
	mismatches := tax.FindMismatches(declaredST(5.00), nil)

	require.Len(t, mismatches, 1)
	assert.Empty(t, mismatches[0].TaxInQB)
	assert.Contains(t, mismatches[0].Description, "not found")
}

// Las tasas inactivas en QuickBooks no cuentan: un impuesto que solo existe
// inactivo se reporta como ausente.
func TestFindMismatches_TasaInactivaSeIgnora(t *testing.T) {
	mismatches := tax.FindMismatches(declaredST(5.00), []tax.LedgerRate{qbRate("ST", 5.00, false)})

	require.Len(t, mismatches, 1)
	assert.Contains(t, mismatches[0].Description, "not found")
}

// La comparación tolera diferencias de representación flotante: 5.0 contra
// 5.004 son iguales a dos decimales.
func TestFindMismatches_ToleranciaDosDecimales(t *testing.T) {
	mismatches := tax.FindMismatches(declaredST(5.0), []tax.LedgerRate{qbRate("ST", 5.004, true)})
	assert.Empty(t, mismatches, "diferencias por debajo de dos decimales no son discrepancia")
}

// La búsqueda es por nombre exacto, no por código.
func TestFindMismatches_BusquedaPorNombre(t *testing.T) {
	declared := []tax.Declared{{Name: "State Tax", Code: "ST", Rate: decimal.NewFromFloat(5)}}
	rates := []tax.LedgerRate{qbRate("ST", 5.00, true)}

	mismatches := tax.FindMismatches(declared, rates)
	require.Len(t, mismatches, 1, "un nombre distinto no debe emparejar aunque el código coincida")
}

// ──────────────────────────────────────────────────────────────────────────────
// DeclaredFromInvoice
// ──────────────────────────────────────────────────────────────────────────────

// laborTaxSameAsPart == false y porcentaje positivo → se añade la entrada
// sintética "Labor Tax" al final de la lista.
func TestDeclaredFromInvoice_AgregaLaborTaxCuandoDifiere(t *testing.T) {
	taxes := tax.DeclaredFromInvoice(declaredST(5.00), false, decimal.NewFromFloat(8.25), decimal.NewFromFloat(12.30))

	require.Len(t, taxes, 2)
	labor := taxes[1]
	assert.Equal(t, tax.LaborTaxName, labor.Name)
	assert.Equal(t, tax.LaborTaxName, labor.Code)
	assert.True(t, labor.Rate.Equal(decimal.NewFromFloat(8.25)))
}

// laborTaxSameAsPart == true → no hay entrada sintética aunque haya porcentaje.
func TestDeclaredFromInvoice_SinLaborTaxSiEsElMismo(t *testing.T) {
	taxes := tax.DeclaredFromInvoice(declaredST(5.00), true, decimal.NewFromFloat(8.25), decimal.Zero)
	assert.Len(t, taxes, 1)
}

// Porcentaje de mano de obra en cero → tampoco se sintetiza la entrada.
func TestDeclaredFromInvoice_SinLaborTaxSiPorcentajeCero(t *testing.T) {
	taxes := tax.DeclaredFromInvoice(declaredST(5.00), false, decimal.Zero, decimal.Zero)
	assert.Len(t, taxes, 1)
}
