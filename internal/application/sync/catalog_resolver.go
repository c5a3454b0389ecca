package sync

import (
	"context"
	"fmt"

	"github.com/jhoicas/fleetsync-api/internal/domain"
	"github.com/jhoicas/fleetsync-api/internal/infrastructure/qbo"
	"github.com/jhoicas/fleetsync-api/pkg/logger"
)

// Objetos estructurales que el motor crea bajo demanda en el catálogo del
// tenant la primera vez que los necesita. Nombres fijos: la creación está
// clavada por nombre, así que bootstraps repetidos convergen en vez de
// duplicar.
const (
	// CategoryName categoría padre bajo la que cuelgan los ítems de servicio.
	CategoryName = "FixyQB"

	ItemParts       = "Parts"
	ItemLabors      = "Labors"
	ItemMiscCharges = "Miscellaneous Charges"
	ItemDisposalFee = "Disposal Fee"

	// IncomeAccountName cuenta de ingresos de los ítems de servicio.
	IncomeAccountName = "Service Income"

	// Tax codes de tasa cero: FX para líneas gravables sin impuesto propio,
	// FXN para líneas no gravables.
	TaxCodeZeroTaxable    = "FX"
	TaxCodeZeroNonTaxable = "FXN"
)

// structuralItems los ítems de servicio auto-creables.
var structuralItems = map[string]bool{
	ItemParts:       true,
	ItemLabors:      true,
	ItemMiscCharges: true,
	ItemDisposalFee: true,
}

// CatalogResolver resuelve nombres legibles del catálogo de QuickBooks a ids
// remotos, creando bajo demanda los objetos estructurales que faltan. Vive lo
// que dura un lote: memoiza los ids ya resueltos para no repetir lookups por
// factura, y usa el patrón lookup → create → re-lookup ante conflicto de
// nombre (otro writer pudo ganar la carrera del bootstrap).
type CatalogResolver struct {
	gateway    LedgerGateway
	session    qbo.Session
	agencyName string // agencia de impuestos de la configuración de compañía
	log        *logger.Logger

	items    map[string]string
	accounts map[string]string
	taxCodes map[string]string
	terms    map[string]string
	agencies map[string]string
}

// NewCatalogResolver construye un resolver para un lote.
func NewCatalogResolver(gateway LedgerGateway, session qbo.Session, agencyName string, log *logger.Logger) *CatalogResolver {
	return &CatalogResolver{
		gateway:    gateway,
		session:    session,
		agencyName: agencyName,
		log:        log.Component("catalog"),
		items:      make(map[string]string),
		accounts:   make(map[string]string),
		taxCodes:   make(map[string]string),
		terms:      make(map[string]string),
		agencies:   make(map[string]string),
	}
}

// ItemID resuelve un ítem por nombre exacto. Los ítems estructurales
// (Parts, Labors, …) se crean bajo demanda; cualquier otro nombre ausente
// devuelve ErrItemNotFound y el caller decide el fallback.
func (r *CatalogResolver) ItemID(ctx context.Context, name string) (string, error) {
	if id, ok := r.items[name]; ok {
		return id, nil
	}

	item, err := r.gateway.FindItemByName(ctx, r.session, name)
	if err != nil {
		return "", fmt.Errorf("buscar ítem %q: %w", name, err)
	}
	if item != nil {
		r.items[name] = item.ID
		return item.ID, nil
	}

	if !structuralItems[name] {
		return "", fmt.Errorf("%w: %s", domain.ErrItemNotFound, name)
	}

	id, err := r.createStructuralItem(ctx, name)
	if err != nil {
		return "", err
	}
	r.items[name] = id
	return id, nil
}

// createStructuralItem crea un ítem de servicio hijo de la categoría padre,
// resolviendo transitivamente la categoría y la cuenta de ingresos.
func (r *CatalogResolver) createStructuralItem(ctx context.Context, name string) (string, error) {
	parentID, err := r.categoryID(ctx)
	if err != nil {
		return "", err
	}
	accountID, err := r.AccountID(ctx, IncomeAccountName)
	if err != nil {
		return "", err
	}

	r.log.Info().Str("item", name).Msg("creando ítem de servicio en QuickBooks")
	created, err := r.gateway.CreateItem(ctx, r.session, &qbo.Item{
		Name:             name,
		Type:             "Service",
		SubItem:          true,
		ParentRef:        &qbo.Ref{Value: parentID},
		IncomeAccountRef: &qbo.Ref{Value: accountID},
		Taxable:          true,
	})
	if err != nil {
		if qbo.IsDuplicateName(err) {
			// Otro writer ganó el bootstrap: el ítem ya existe, releer.
			existing, lerr := r.gateway.FindItemByName(ctx, r.session, name)
			if lerr == nil && existing != nil {
				return existing.ID, nil
			}
		}
		return "", fmt.Errorf("crear ítem %q: %w", name, err)
	}
	return created.ID, nil
}

// categoryID resuelve (o crea) la categoría padre de los ítems de servicio.
func (r *CatalogResolver) categoryID(ctx context.Context) (string, error) {
	if id, ok := r.items[CategoryName]; ok {
		return id, nil
	}

	item, err := r.gateway.FindItemByName(ctx, r.session, CategoryName)
	if err != nil {
		return "", fmt.Errorf("buscar categoría %q: %w", CategoryName, err)
	}
	if item == nil {
		item, err = r.gateway.CreateItem(ctx, r.session, &qbo.Item{Name: CategoryName, Type: "Category"})
		if err != nil {
			if qbo.IsDuplicateName(err) {
				item, err = r.gateway.FindItemByName(ctx, r.session, CategoryName)
			}
			if err != nil || item == nil {
				return "", fmt.Errorf("crear categoría %q: %w", CategoryName, err)
			}
		}
	}
	r.items[CategoryName] = item.ID
	return item.ID, nil
}

// AccountID resuelve una cuenta contable por nombre, creándola como cuenta de
// ingresos de servicios si no existe.
func (r *CatalogResolver) AccountID(ctx context.Context, name string) (string, error) {
	if id, ok := r.accounts[name]; ok {
		return id, nil
	}

	account, err := r.gateway.FindAccountByName(ctx, r.session, name)
	if err != nil {
		return "", fmt.Errorf("buscar cuenta %q: %w", name, err)
	}
	if account == nil {
		account, err = r.gateway.CreateAccount(ctx, r.session, &qbo.Account{
			Name:           name,
			AccountType:    "Income",
			AccountSubType: "ServiceFeeIncome",
		})
		if err != nil {
			if qbo.IsDuplicateName(err) {
				account, err = r.gateway.FindAccountByName(ctx, r.session, name)
			}
			if err != nil || account == nil {
				return "", fmt.Errorf("crear cuenta %q: %w", name, err)
			}
		}
	}
	r.accounts[name] = account.ID
	return account.ID, nil
}

// TaxCodeID resuelve un tax code por nombre. Solo los códigos de tasa cero
// FX/FXN son auto-creables (vía el tax service de Intuit, atados a la agencia
// configurada); cualquier otro ausente devuelve ErrTaxCodeNotFound.
func (r *CatalogResolver) TaxCodeID(ctx context.Context, name string) (string, error) {
	if id, ok := r.taxCodes[name]; ok {
		return id, nil
	}

	code, err := r.gateway.FindTaxCodeByName(ctx, r.session, name)
	if err != nil {
		return "", fmt.Errorf("buscar tax code %q: %w", name, err)
	}
	if code == nil {
		if name != TaxCodeZeroTaxable && name != TaxCodeZeroNonTaxable {
			return "", fmt.Errorf("%w: %s", domain.ErrTaxCodeNotFound, name)
		}
		agencyID, aerr := r.TaxAgencyID(ctx, r.agencyName)
		if aerr != nil {
			return "", aerr
		}
		r.log.Info().Str("taxCode", name).Msg("creando tax code de tasa cero en QuickBooks")
		code, err = r.gateway.CreateZeroRateTaxCode(ctx, r.session, name, agencyID)
		if err != nil {
			if qbo.IsDuplicateName(err) {
				code, err = r.gateway.FindTaxCodeByName(ctx, r.session, name)
			}
			if err != nil || code == nil {
				return "", fmt.Errorf("crear tax code %q: %w", name, err)
			}
		}
	}
	r.taxCodes[name] = code.ID
	return code.ID, nil
}

// TaxAgencyID resuelve una agencia de impuestos por nombre exacto. No es
// auto-creable: su ausencia es un error de configuración.
func (r *CatalogResolver) TaxAgencyID(ctx context.Context, name string) (string, error) {
	if id, ok := r.agencies[name]; ok {
		return id, nil
	}

	agency, err := r.gateway.FindTaxAgencyByName(ctx, r.session, name)
	if err != nil {
		return "", fmt.Errorf("buscar agencia %q: %w", name, err)
	}
	if agency == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrTaxAgencyNotFound, name)
	}
	r.agencies[name] = agency.ID
	return agency.ID, nil
}

// TermID resuelve un término de pago por nombre exacto. No es auto-creable.
func (r *CatalogResolver) TermID(ctx context.Context, name string) (string, error) {
	if id, ok := r.terms[name]; ok {
		return id, nil
	}

	term, err := r.gateway.FindTermByName(ctx, r.session, name)
	if err != nil {
		return "", fmt.Errorf("buscar término %q: %w", name, err)
	}
	if term == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrTermNotFound, name)
	}
	r.terms[name] = term.ID
	return term.ID, nil
}
