package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fleetsync-api/internal/application/dto"
	"github.com/jhoicas/fleetsync-api/internal/domain/entity"
	"github.com/jhoicas/fleetsync-api/internal/infrastructure/qbo"
	"github.com/jhoicas/fleetsync-api/pkg/logger"
)

// Fakes compartidos por los tests del paquete. Cuentan llamadas para poder
// afirmar las propiedades del motor (exactamente un create por factura, cero
// llamadas remotas tras un mismatch, etc.).

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// ── Gateway fake ──────────────────────────────────────────────────────────────

type fakeGateway struct {
	taxRates  []qbo.TaxRate
	company   qbo.CompanyInfo
	items     map[string]string
	accounts  map[string]string
	taxCodes  map[string]string
	agencies  map[string]string
	terms     map[string]string
	customers map[string]string
	invoices  map[string]*qbo.Invoice

	findTaxRatesCalls   int
	findCustomerCalls   int
	createCustomerCalls int
	createItemCalls     int
	createTaxCodeCalls  int
	getInvoiceCalls     int
	createInvoiceCalls  int
	deleteInvoiceCalls  int
	deletedIDs          []string

	// createInvoiceErrOnCall número (1-based) de llamada a CreateInvoice que
	// falla con un error remoto; 0 = nunca falla.
	createInvoiceErrOnCall int

	seq int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		taxRates: []qbo.TaxRate{{ID: "1", Name: "ST", RateValue: d("5"), Active: true}},
		company:  qbo.CompanyInfo{ID: "9130", CompanyName: "FleetFixy Shop", Country: "US"},
		items: map[string]string{
			ItemParts:       "11",
			ItemLabors:      "12",
			ItemMiscCharges: "13",
			ItemDisposalFee: "14",
		},
		accounts:  map[string]string{IncomeAccountName: "79"},
		taxCodes:  map[string]string{TaxCodeZeroTaxable: "21", TaxCodeZeroNonTaxable: "22"},
		agencies:  map[string]string{"Texas Comptroller": "5"},
		terms:     map[string]string{"Net 30": "3"},
		customers: map[string]string{"Acme Trucking": "58"},
		invoices:  map[string]*qbo.Invoice{},
	}
}

func (g *fakeGateway) FindTaxRates(ctx context.Context, s qbo.Session) ([]qbo.TaxRate, error) {
	g.findTaxRatesCalls++
	return g.taxRates, nil
}

func (g *fakeGateway) FindTaxCodeByName(ctx context.Context, s qbo.Session, name string) (*qbo.TaxCode, error) {
	if id, ok := g.taxCodes[name]; ok {
		return &qbo.TaxCode{ID: id, Name: name, Active: true}, nil
	}
	return nil, nil
}

func (g *fakeGateway) CreateZeroRateTaxCode(ctx context.Context, s qbo.Session, name, agencyID string) (*qbo.TaxCode, error) {
	g.createTaxCodeCalls++
	g.seq++
	id := fmt.Sprintf("tc-%d", g.seq)
	g.taxCodes[name] = id
	return &qbo.TaxCode{ID: id, Name: name, Active: true}, nil
}

func (g *fakeGateway) FindTaxAgencyByName(ctx context.Context, s qbo.Session, name string) (*qbo.TaxAgency, error) {
	if id, ok := g.agencies[name]; ok {
		return &qbo.TaxAgency{ID: id, DisplayName: name}, nil
	}
	return nil, nil
}

func (g *fakeGateway) FindItemByName(ctx context.Context, s qbo.Session, name string) (*qbo.Item, error) {
	if id, ok := g.items[name]; ok {
		return &qbo.Item{ID: id, Name: name}, nil
	}
	return nil, nil
}

func (g *fakeGateway) CreateItem(ctx context.Context, s qbo.Session, item *qbo.Item) (*qbo.Item, error) {
	g.createItemCalls++
	g.seq++
	out := *item
	out.ID = fmt.Sprintf("item-%d", g.seq)
	g.items[item.Name] = out.ID
	return &out, nil
}

func (g *fakeGateway) FindAccountByName(ctx context.Context, s qbo.Session, name string) (*qbo.Account, error) {
	if id, ok := g.accounts[name]; ok {
		return &qbo.Account{ID: id, Name: name}, nil
	}
	return nil, nil
}

func (g *fakeGateway) CreateAccount(ctx context.Context, s qbo.Session, account *qbo.Account) (*qbo.Account, error) {
	g.seq++
	out := *account
	out.ID = fmt.Sprintf("acct-%d", g.seq)
	g.accounts[account.Name] = out.ID
	return &out, nil
}

func (g *fakeGateway) FindTermByName(ctx context.Context, s qbo.Session, name string) (*qbo.Term, error) {
	if id, ok := g.terms[name]; ok {
		return &qbo.Term{ID: id, Name: name}, nil
	}
	return nil, nil
}

func (g *fakeGateway) FindCustomerByName(ctx context.Context, s qbo.Session, displayName string) (*qbo.Customer, error) {
	g.findCustomerCalls++
	if id, ok := g.customers[displayName]; ok {
		return &qbo.Customer{ID: id, DisplayName: displayName}, nil
	}
	return nil, nil
}

func (g *fakeGateway) CreateCustomer(ctx context.Context, s qbo.Session, customer *qbo.Customer) (*qbo.Customer, error) {
	g.createCustomerCalls++
	g.seq++
	out := *customer
	out.ID = fmt.Sprintf("cust-%d", g.seq)
	g.customers[customer.DisplayName] = out.ID
	return &out, nil
}

func (g *fakeGateway) GetCompanyInfo(ctx context.Context, s qbo.Session) (*qbo.CompanyInfo, error) {
	info := g.company
	return &info, nil
}

func (g *fakeGateway) GetInvoice(ctx context.Context, s qbo.Session, id string) (*qbo.Invoice, error) {
	g.getInvoiceCalls++
	if inv, ok := g.invoices[id]; ok {
		out := *inv
		return &out, nil
	}
	return nil, nil
}

func (g *fakeGateway) CreateInvoice(ctx context.Context, s qbo.Session, invoice *qbo.Invoice) (*qbo.Invoice, error) {
	g.createInvoiceCalls++
	if g.createInvoiceErrOnCall == g.createInvoiceCalls {
		return nil, &qbo.APIError{StatusCode: 400, Body: "Business Validation Error: remote rejected"}
	}
	g.seq++
	out := *invoice
	out.ID = fmt.Sprintf("inv-%d", g.seq)
	if out.DocNumber == "" {
		out.DocNumber = fmt.Sprintf("10%02d", g.seq)
	}
	g.invoices[out.ID] = &out
	return &out, nil
}

func (g *fakeGateway) DeleteInvoice(ctx context.Context, s qbo.Session, id, syncToken string) error {
	g.deleteInvoiceCalls++
	g.deletedIDs = append(g.deletedIDs, id)
	delete(g.invoices, id)
	return nil
}

// ── Repositorios fake ─────────────────────────────────────────────────────────

type fakeCredRepo struct {
	cred        *entity.Credential
	getErr      error
	updateErr   error
	updateCalls int
}

func (r *fakeCredRepo) Get(ctx context.Context) (*entity.Credential, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.cred == nil {
		return nil, nil
	}
	out := *r.cred
	return &out, nil
}

func (r *fakeCredRepo) Save(ctx context.Context, cred *entity.Credential) error {
	r.cred = cred
	return nil
}

func (r *fakeCredRepo) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiry time.Time) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updateCalls++
	r.cred.AccessToken = accessToken
	r.cred.RefreshToken = refreshToken
	r.cred.TokenExpiry = expiry
	return nil
}

type fakeOAuth struct {
	token *qbo.TokenResponse
	err   error
	calls int
}

func (o *fakeOAuth) Refresh(ctx context.Context, refreshToken string) (*qbo.TokenResponse, error) {
	o.calls++
	if o.err != nil {
		return nil, o.err
	}
	return o.token, nil
}

type fakeConfigRepo struct {
	configs map[string]*entity.CompanyConfig
}

func (r *fakeConfigRepo) GetByCode(ctx context.Context, code string) (*entity.CompanyConfig, error) {
	return r.configs[code], nil
}

func (r *fakeConfigRepo) Upsert(ctx context.Context, cfg *entity.CompanyConfig) error {
	r.configs[cfg.Code] = cfg
	return nil
}

func (r *fakeConfigRepo) List(ctx context.Context) ([]*entity.CompanyConfig, error) {
	out := make([]*entity.CompanyConfig, 0, len(r.configs))
	for _, cfg := range r.configs {
		out = append(out, cfg)
	}
	return out, nil
}

type fakeRecordRepo struct {
	records      map[string]*entity.SyncRecord
	successCalls int
	failureCalls int
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: map[string]*entity.SyncRecord{}}
}

func recordKey(workOrderID, companyCode string) string {
	return workOrderID + "|" + companyCode
}

func (r *fakeRecordRepo) FindByWorkOrder(ctx context.Context, workOrderID, companyCode string) (*entity.SyncRecord, error) {
	if rec, ok := r.records[recordKey(workOrderID, companyCode)]; ok {
		out := *rec
		return &out, nil
	}
	return nil, nil
}

func (r *fakeRecordRepo) UpsertSuccess(ctx context.Context, workOrderID, companyCode, qbInvoiceID, docNumber, status string, invoiceDate time.Time) (*entity.SyncRecord, error) {
	r.successCalls++
	rec := &entity.SyncRecord{
		WorkOrderID: workOrderID,
		CompanyCode: companyCode,
		QBInvoiceID: qbInvoiceID,
		DocNumber:   docNumber,
		Status:      status,
		InvoiceDate: invoiceDate,
	}
	r.records[recordKey(workOrderID, companyCode)] = rec
	out := *rec
	return &out, nil
}

func (r *fakeRecordRepo) UpsertFailure(ctx context.Context, workOrderID, companyCode, errorMessage string, invoiceDate time.Time) (*entity.SyncRecord, error) {
	r.failureCalls++
	rec := &entity.SyncRecord{
		WorkOrderID:  workOrderID,
		CompanyCode:  companyCode,
		Status:       entity.StatusFailure,
		ErrorMessage: errorMessage,
		InvoiceDate:  invoiceDate,
	}
	r.records[recordKey(workOrderID, companyCode)] = rec
	out := *rec
	return &out, nil
}

func (r *fakeRecordRepo) ListByCompany(ctx context.Context, companyCode string, limit, offset int) ([]*entity.SyncRecord, error) {
	var out []*entity.SyncRecord
	for _, rec := range r.records {
		if rec.CompanyCode == companyCode {
			c := *rec
			out = append(out, &c)
		}
	}
	return out, nil
}

// ── Fixtures ──────────────────────────────────────────────────────────────────

func sampleInvoice(workOrderID string) dto.InvoiceRequest {
	return dto.InvoiceRequest{
		WorkOrderID: workOrderID,
		To: dto.Party{
			Name:  "Acme Trucking",
			Email: "ops@acme.example",
			Address: dto.Address{
				Line1: "1 Main St", City: "Austin", State: "TX", ZipCode: "78701", Country: "US",
			},
		},
		From: dto.Party{
			Name: "FleetFixy Shop",
			Address: dto.Address{
				Line1: "200 Shop Rd", City: "Austin", State: "TX", ZipCode: "78702", Country: "US",
			},
		},
		Lines: []dto.InvoiceLine{{
			Parts: []dto.PartLine{{
				Name:         "Brake Pad",
				Quantity:     d("2"),
				SellingPrice: d("10.00"),
				TotalAmount:  d("20.00"),
				TaxCode:      "ST",
			}},
		}},
		PartsTax:           []dto.DeclaredTax{{Name: "ST", Code: "ST", Tax: d("5"), TaxAmount: d("1.00")}},
		LaborTaxSameAsPart: true,
		InvoiceDate:        "2026-01-15",
		FinalTotal:         d("21.00"),
	}
}
