package sync

import (
	"context"
	"fmt"

	"github.com/jhoicas/fleetsync-api/internal/application/dto"
	"github.com/jhoicas/fleetsync-api/internal/infrastructure/qbo"
	"github.com/jhoicas/fleetsync-api/pkg/logger"
)

// CustomerResolver encuentra o crea el cliente de QuickBooks para la parte
// facturada. La búsqueda por DisplayName es la autoridad y se repite por
// factura (nunca se cachea a través del lote): así un reenvío del mismo work
// order no duplica clientes.
type CustomerResolver struct {
	gateway LedgerGateway
	log     *logger.Logger
}

// NewCustomerResolver construye el resolver.
func NewCustomerResolver(gateway LedgerGateway, log *logger.Logger) *CustomerResolver {
	return &CustomerResolver{gateway: gateway, log: log.Component("customer")}
}

// ResolveOrCreate busca el cliente por nombre exacto y lo crea si no existe.
// Del resultado solo se usa el Id aguas abajo.
func (r *CustomerResolver) ResolveOrCreate(ctx context.Context, s qbo.Session, party dto.Party) (*qbo.Customer, error) {
	existing, err := r.gateway.FindCustomerByName(ctx, s, party.Name)
	if err != nil {
		return nil, fmt.Errorf("buscar cliente %q: %w", party.Name, err)
	}
	if existing != nil {
		return existing, nil
	}

	r.log.Info().Str("customer", party.Name).Msg("creando cliente en QuickBooks")
	payload := &qbo.Customer{
		DisplayName: party.Name,
		GivenName:   party.FirstName,
		FamilyName:  party.LastName,
		BillAddr: &qbo.Address{
			Line1:                  party.Address.Line1,
			Line2:                  party.Address.Line2,
			City:                   party.Address.City,
			CountrySubDivisionCode: party.Address.State,
			PostalCode:             party.Address.ZipCode,
			Country:                party.Address.Country,
		},
	}
	if party.Email != "" {
		payload.PrimaryEmailAddr = &qbo.EmailAddr{Address: party.Email}
	}
	if party.MobilePhone != "" {
		payload.PrimaryPhone = &qbo.Phone{FreeFormNumber: party.MobilePhone}
	}

	created, err := r.gateway.CreateCustomer(ctx, s, payload)
	if err != nil {
		if qbo.IsDuplicateName(err) {
			// Otro envío concurrente lo creó primero: releer.
			existing, lerr := r.gateway.FindCustomerByName(ctx, s, party.Name)
			if lerr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("crear cliente %q: %w", party.Name, err)
	}
	return created, nil
}
