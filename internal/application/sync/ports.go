package sync

import (
	"context"

	"github.com/jhoicas/fleetsync-api/internal/infrastructure/qbo"
)

// LedgerGateway es la superficie del API de QuickBooks que el motor consume.
// La implementa qbo.Client; los tests la sustituyen por un mock que cuenta
// llamadas.
type LedgerGateway interface {
	// Impuestos
	FindTaxRates(ctx context.Context, s qbo.Session) ([]qbo.TaxRate, error)
	FindTaxCodeByName(ctx context.Context, s qbo.Session, name string) (*qbo.TaxCode, error)
	CreateZeroRateTaxCode(ctx context.Context, s qbo.Session, name, agencyID string) (*qbo.TaxCode, error)
	FindTaxAgencyByName(ctx context.Context, s qbo.Session, name string) (*qbo.TaxAgency, error)

	// Catálogo
	FindItemByName(ctx context.Context, s qbo.Session, name string) (*qbo.Item, error)
	CreateItem(ctx context.Context, s qbo.Session, item *qbo.Item) (*qbo.Item, error)
	FindAccountByName(ctx context.Context, s qbo.Session, name string) (*qbo.Account, error)
	CreateAccount(ctx context.Context, s qbo.Session, account *qbo.Account) (*qbo.Account, error)
	FindTermByName(ctx context.Context, s qbo.Session, name string) (*qbo.Term, error)

	// Clientes
	FindCustomerByName(ctx context.Context, s qbo.Session, displayName string) (*qbo.Customer, error)
	CreateCustomer(ctx context.Context, s qbo.Session, customer *qbo.Customer) (*qbo.Customer, error)

	// Compañía
	GetCompanyInfo(ctx context.Context, s qbo.Session) (*qbo.CompanyInfo, error)

	// Facturas
	GetInvoice(ctx context.Context, s qbo.Session, id string) (*qbo.Invoice, error)
	CreateInvoice(ctx context.Context, s qbo.Session, invoice *qbo.Invoice) (*qbo.Invoice, error)
	DeleteInvoice(ctx context.Context, s qbo.Session, id, syncToken string) error
}

// OAuthRefresher es el puerto del refresh de tokens contra Intuit.
// Lo implementa qbo.OAuthClient.
type OAuthRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*qbo.TokenResponse, error)
}
