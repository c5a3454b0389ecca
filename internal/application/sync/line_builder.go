package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fleetsync-api/internal/application/dto"
	"github.com/jhoicas/fleetsync-api/internal/domain"
	"github.com/jhoicas/fleetsync-api/internal/domain/tax"
	"github.com/jhoicas/fleetsync-api/internal/infrastructure/qbo"
	"github.com/jhoicas/fleetsync-api/pkg/logger"
)

// flatTaxMarker marcador de tax code cuando el tenant está fuera de la
// jurisdicción que direcciona impuestos por código de línea (país != US):
// todas las líneas llevan "TAX" y la factura carga un único bloque
// TxnTaxDetail en lugar de códigos por línea.
const flatTaxMarker = "TAX"

// LineBuilder aplana las sublistas heterogéneas de la factura (repuestos,
// mano de obra, cargos misceláneos, tarifas de disposición) en líneas de
// QuickBooks, resolviendo los ítems vía el CatalogResolver. Los montos vienen
// calculados por el caller y se confían tal cual.
type LineBuilder struct {
	catalog *CatalogResolver
	log     *logger.Logger
}

// NewLineBuilder construye el builder para un lote.
func NewLineBuilder(catalog *CatalogResolver, log *logger.Logger) *LineBuilder {
	return &LineBuilder{catalog: catalog, log: log.Component("lines")}
}

// Build convierte las líneas de la factura. flatTax selecciona la rama
// jurisdiccional, decidida una vez por lote (un solo GetCompanyInfo) y
// aplicada de forma consistente a todas las líneas de la factura. El segundo
// retorno es el bloque agregado de impuestos, solo no-nil en la rama flat.
func (b *LineBuilder) Build(ctx context.Context, inv *dto.InvoiceRequest, flatTax bool) ([]qbo.Line, *qbo.TxnTaxDetail, error) {
	one := decimal.NewFromInt(1)

	partsCode := ""
	if len(inv.PartsTax) > 0 {
		partsCode = inv.PartsTax[0].Code
	}

	// taxRef resuelve la referencia de tax code de una línea gravable. Código
	// vacío cae al código de tasa cero FX.
	taxRef := func(code string) (*qbo.Ref, error) {
		if flatTax {
			return &qbo.Ref{Value: flatTaxMarker}, nil
		}
		if code == "" {
			id, err := b.catalog.TaxCodeID(ctx, TaxCodeZeroTaxable)
			if err != nil {
				return nil, err
			}
			return &qbo.Ref{Value: id}, nil
		}
		return &qbo.Ref{Value: code}, nil
	}

	// nonTaxableRef referencia para líneas no gravables (FXN).
	nonTaxableRef := func() (*qbo.Ref, error) {
		if flatTax {
			return &qbo.Ref{Value: flatTaxMarker}, nil
		}
		id, err := b.catalog.TaxCodeID(ctx, TaxCodeZeroNonTaxable)
		if err != nil {
			return nil, err
		}
		return &qbo.Ref{Value: id}, nil
	}

	var lines []qbo.Line

	for _, section := range inv.Lines {
		for _, part := range section.Parts {
			itemID, err := b.catalog.ItemID(ctx, part.Name)
			if errors.Is(err, domain.ErrItemNotFound) {
				// Repuesto sin ítem propio en el catálogo: cae al ítem
				// estructural genérico de repuestos.
				itemID, err = b.catalog.ItemID(ctx, ItemParts)
			}
			if err != nil {
				return nil, nil, err
			}
			ref, err := taxRef(part.TaxCode)
			if err != nil {
				return nil, nil, err
			}
			qty, price := part.Quantity, part.SellingPrice
			lines = append(lines, qbo.Line{
				Amount:     part.TotalAmount,
				DetailType: qbo.DetailTypeSalesItem,
				SalesItemLineDetail: &qbo.SalesItemLineDetail{
					ItemRef:    qbo.Ref{Value: itemID, Name: part.Name},
					Qty:        &qty,
					UnitPrice:  &price,
					TaxCodeRef: ref,
				},
			})
		}

		for _, labor := range section.Labors {
			itemID, err := b.catalog.ItemID(ctx, ItemLabors)
			if err != nil {
				return nil, nil, err
			}
			// Mano de obra con el mismo impuesto de repuestos comparte el tax
			// code; si difiere, la línea va con tasa cero y el impuesto lo
			// carga la línea sintética "Labor Tax".
			code := ""
			if inv.LaborTaxSameAsPart {
				code = partsCode
			}
			ref, err := taxRef(code)
			if err != nil {
				return nil, nil, err
			}
			qty, price := labor.Hours, labor.Rate
			lines = append(lines, qbo.Line{
				Amount:      labor.TotalAmount,
				Description: labor.Description,
				DetailType:  qbo.DetailTypeSalesItem,
				SalesItemLineDetail: &qbo.SalesItemLineDetail{
					ItemRef:    qbo.Ref{Value: itemID},
					Qty:        &qty,
					UnitPrice:  &price,
					TaxCodeRef: ref,
				},
			})
		}

		for _, charge := range section.MiscCharges {
			itemID, err := b.catalog.ItemID(ctx, ItemMiscCharges)
			if err != nil {
				return nil, nil, err
			}
			ref, err := nonTaxableRef()
			if err != nil {
				return nil, nil, err
			}
			qty := one
			lines = append(lines, qbo.Line{
				Amount:      charge.TotalAmount,
				Description: charge.Name,
				DetailType:  qbo.DetailTypeSalesItem,
				SalesItemLineDetail: &qbo.SalesItemLineDetail{
					ItemRef:    qbo.Ref{Value: itemID},
					Qty:        &qty,
					TaxCodeRef: ref,
				},
			})
		}

		for _, fee := range section.DisposalFees {
			itemID, err := b.catalog.ItemID(ctx, ItemDisposalFee)
			if err != nil {
				return nil, nil, err
			}
			ref, err := nonTaxableRef()
			if err != nil {
				return nil, nil, err
			}
			qty := one
			lines = append(lines, qbo.Line{
				Amount:      fee.TotalAmount,
				Description: fee.Name,
				DetailType:  qbo.DetailTypeSalesItem,
				SalesItemLineDetail: &qbo.SalesItemLineDetail{
					ItemRef:    qbo.Ref{Value: itemID},
					Qty:        &qty,
					TaxCodeRef: ref,
				},
			})
		}
	}

	// Línea sintética de impuesto de mano de obra: solo cuando difiere del de
	// repuestos y no es cero.
	if !inv.LaborTaxSameAsPart && inv.LaborTax.IsPositive() {
		itemID, err := b.catalog.ItemID(ctx, ItemLabors)
		if err != nil {
			return nil, nil, err
		}
		ref, err := nonTaxableRef()
		if err != nil {
			return nil, nil, err
		}
		qty := one
		lines = append(lines, qbo.Line{
			Amount:      inv.LaborTax,
			Description: tax.LaborTaxName,
			DetailType:  qbo.DetailTypeSalesItem,
			SalesItemLineDetail: &qbo.SalesItemLineDetail{
				ItemRef:    qbo.Ref{Value: itemID},
				Qty:        &qty,
				TaxCodeRef: ref,
			},
		})
	}

	// Descuento porcentual: una sola línea, siempre al final.
	if inv.DiscountPercentage != nil && inv.DiscountPercentage.IsPositive() {
		lines = append(lines, qbo.Line{
			DetailType: qbo.DetailTypeDiscount,
			DiscountLineDetail: &qbo.DiscountLineDetail{
				PercentBased:    true,
				DiscountPercent: *inv.DiscountPercentage,
			},
		})
	}

	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("%w: la factura no tiene líneas", domain.ErrInvalidInput)
	}

	var detail *qbo.TxnTaxDetail
	if flatTax && len(inv.PartsTax) > 0 {
		taxLines := make([]qbo.TaxLine, 0, len(inv.PartsTax))
		for _, t := range inv.PartsTax {
			taxLines = append(taxLines, qbo.TaxLine{
				DetailType:    "TaxLineDetail",
				TaxLineDetail: qbo.TaxLineDetail{TaxRateRef: qbo.Ref{Value: t.Code}},
			})
		}
		detail = &qbo.TxnTaxDetail{TaxLine: taxLines}
	}

	return lines, detail, nil
}
