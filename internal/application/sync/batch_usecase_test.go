package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fleetsync-api/internal/application/dto"
	"github.com/jhoicas/fleetsync-api/internal/domain"
	"github.com/jhoicas/fleetsync-api/internal/domain/entity"
	"github.com/jhoicas/fleetsync-api/internal/infrastructure/qbo"
)

const testCompany = "FLEETCO"

type useCaseFixture struct {
	uc      *SyncUseCase
	gateway *fakeGateway
	records *fakeRecordRepo
	configs *fakeConfigRepo
}

func newUseCaseFixture() *useCaseFixture {
	gw := newFakeGateway()
	records := newFakeRecordRepo()
	configs := &fakeConfigRepo{configs: map[string]*entity.CompanyConfig{
		testCompany: {
			Code:                testCompany,
			Name:                "FleetFixy Co",
			Terms:               "Net 30",
			KeepQBInvoiceNumber: true,
			SalesTaxAgency:      "Texas Comptroller",
		},
	}}
	creds := &fakeCredRepo{cred: &entity.Credential{
		ID: "cred-1", RealmID: "realm", AccessToken: "at",
		TokenExpiry: time.Now().Add(time.Hour), MinorVersion: 65,
	}}
	tokens := NewTokenManager(creds, &fakeOAuth{}, 2*time.Minute, testLogger())

	return &useCaseFixture{
		uc:      NewSyncUseCase(tokens, gw, configs, records, testLogger()),
		gateway: gw,
		records: records,
		configs: configs,
	}
}

func (f *useCaseFixture) push(t *testing.T, invoices ...dto.InvoiceRequest) *dto.PushInvoicesResponse {
	t.Helper()
	resp, err := f.uc.PushInvoices(context.Background(), &dto.PushInvoicesRequest{
		CompanyConfigCode: testCompany,
		Invoices:          invoices,
	})
	require.NoError(t, err)
	return resp
}

// Factura limpia sin registro previo: exactamente un create remoto, un upsert
// de éxito y estado CREATED.
func TestPushInvoices_PrimerEnvio(t *testing.T) {
	f := newUseCaseFixture()

	resp := f.push(t, sampleInvoice("WO-2001"))
	require.Len(t, resp.Invoices, 1)

	result := resp.Invoices[0]
	assert.Equal(t, entity.StatusCreated, result.Status)
	assert.Equal(t, "Invoice created Successfully.", result.Message)
	assert.NotEmpty(t, result.QBInvoiceID)
	assert.NotEmpty(t, result.DocNumber)

	assert.Equal(t, 1, f.gateway.createInvoiceCalls, "exactamente una creación remota")
	assert.Zero(t, f.gateway.deleteInvoiceCalls)
	assert.Equal(t, 1, f.records.successCalls, "exactamente un upsert de éxito")
	assert.Zero(t, f.records.failureCalls)

	rec := f.records.records[recordKey("WO-2001", testCompany)]
	require.NotNil(t, rec)
	assert.Equal(t, entity.StatusCreated, rec.Status)
	assert.Equal(t, result.QBInvoiceID, rec.QBInvoiceID)
}

// Discrepancia de impuestos: cero llamadas remotas de cliente/factura, fallo
// registrado con el detalle del validador.
func TestPushInvoices_MismatchDeImpuestosBloquea(t *testing.T) {
	f := newUseCaseFixture()
	// La tasa en QuickBooks es 7.00, la factura declara 5.00.
	f.gateway.taxRates[0].RateValue = d("7")

	resp := f.push(t, sampleInvoice("WO-2002"))
	result := resp.Invoices[0]

	assert.Equal(t, entity.StatusFailure, result.Status)
	assert.Equal(t, "Sales Tax does not match for company", result.Message)
	require.Len(t, result.TaxDetails, 1)
	assert.Equal(t, "ST", result.TaxDetails[0].Name)
	assert.Equal(t, "5.00 %", result.TaxDetails[0].Tax)
	assert.Equal(t, "7.00 %", result.TaxDetails[0].TaxInQB)

	assert.Zero(t, f.gateway.createInvoiceCalls, "mismatch no debe crear facturas")
	assert.Zero(t, f.gateway.findCustomerCalls, "mismatch no debe tocar clientes")
	assert.Zero(t, f.gateway.createCustomerCalls)
	assert.Equal(t, 1, f.records.failureCalls)
	assert.Zero(t, f.records.successCalls)
}

// Reenvío con registro local previo: un intento de borrado contra el id
// registrado, luego una creación, estado UPDATED.
func TestPushInvoices_ReenvioConRegistroLocal(t *testing.T) {
	f := newUseCaseFixture()

	first := f.push(t, sampleInvoice("WO-2003"))
	priorID := first.Invoices[0].QBInvoiceID
	require.NotEmpty(t, priorID)

	second := f.push(t, sampleInvoice("WO-2003"))
	result := second.Invoices[0]

	assert.Equal(t, entity.StatusUpdated, result.Status)
	assert.Equal(t, 1, f.gateway.deleteInvoiceCalls, "exactamente un intento de borrado")
	assert.Equal(t, []string{priorID}, f.gateway.deletedIDs, "debe borrarse el id registrado localmente")
	assert.Equal(t, 2, f.gateway.createInvoiceCalls)
	assert.NotEqual(t, priorID, result.QBInvoiceID)

	rec := f.records.records[recordKey("WO-2003", testCompany)]
	assert.Equal(t, entity.StatusUpdated, rec.Status)
}

// El registro local gana sobre el id que envía el caller.
func TestPushInvoices_RegistroLocalGanaAlCaller(t *testing.T) {
	f := newUseCaseFixture()

	first := f.push(t, sampleInvoice("WO-2004"))
	priorID := first.Invoices[0].QBInvoiceID

	inv := sampleInvoice("WO-2004")
	inv.QBInvoiceID = "999" // referencia obsoleta del caller
	second := f.push(t, inv)

	assert.Equal(t, entity.StatusUpdated, second.Invoices[0].Status)
	assert.Equal(t, []string{priorID}, f.gateway.deletedIDs, "se borra el id local, no el del caller")
}

// Id previo del caller sin registro local ni factura remota: estado
// OLD INVOICE NOT FOUND y la nueva factura se crea igual.
func TestPushInvoices_ReferenciaPreviaIrresoluble(t *testing.T) {
	f := newUseCaseFixture()

	inv := sampleInvoice("WO-2005")
	inv.QBInvoiceID = "999"
	resp := f.push(t, inv)
	result := resp.Invoices[0]

	assert.Equal(t, entity.StatusOldInvoiceNotFound, result.Status)
	assert.NotEmpty(t, result.QBInvoiceID, "el envío nuevo no se bloquea")
	assert.Equal(t, 1, f.gateway.createInvoiceCalls)
	assert.Zero(t, f.gateway.deleteInvoiceCalls)
}

// La factura remota del caller existe pero no hay registro local: estado
// inconcluso DUPLICATE OLD INVOICES FOUND, sin borrado, creación normal.
func TestPushInvoices_PriorAmbiguo(t *testing.T) {
	f := newUseCaseFixture()
	f.gateway.invoices["777"] = &qbo.Invoice{ID: "777", SyncToken: "0"}

	inv := sampleInvoice("WO-2006")
	inv.QBInvoiceID = "777"
	resp := f.push(t, inv)
	result := resp.Invoices[0]

	assert.Equal(t, entity.StatusDuplicateOldInvoices, result.Status)
	assert.Zero(t, f.gateway.deleteInvoiceCalls, "la vieja queda para limpieza manual")
	assert.Equal(t, 1, f.gateway.createInvoiceCalls)
}

// Un registro FAILURE previo no aporta id remoto: el reenvío cuenta como
// primer envío y queda CREATED.
func TestPushInvoices_FalloPrevioCuentaComoPrimerEnvio(t *testing.T) {
	f := newUseCaseFixture()
	_, err := f.records.UpsertFailure(context.Background(), "WO-2007", testCompany, "boom", time.Now())
	require.NoError(t, err)

	resp := f.push(t, sampleInvoice("WO-2007"))
	assert.Equal(t, entity.StatusCreated, resp.Invoices[0].Status)
	assert.Zero(t, f.gateway.deleteInvoiceCalls)
}

// Un error remoto en una factura no detiene a las que siguen en el lote, y el
// texto original del error se conserva en el registro.
func TestPushInvoices_AislamientoDelLote(t *testing.T) {
	f := newUseCaseFixture()
	f.gateway.createInvoiceErrOnCall = 1

	resp := f.push(t, sampleInvoice("WO-2008"), sampleInvoice("WO-2009"))
	require.Len(t, resp.Invoices, 2)

	assert.Equal(t, entity.StatusFailure, resp.Invoices[0].Status)
	assert.Contains(t, resp.Invoices[0].Message, "remote rejected", "el texto remoto se conserva")
	assert.Equal(t, entity.StatusCreated, resp.Invoices[1].Status)

	assert.Equal(t, 1, f.records.failureCalls)
	assert.Equal(t, 1, f.records.successCalls)

	rec := f.records.records[recordKey("WO-2008", testCompany)]
	require.NotNil(t, rec)
	assert.Contains(t, rec.ErrorMessage, "remote rejected")
}

// Código de compañía sin configuración → el lote entero aborta sin procesar
// factura alguna.
func TestPushInvoices_ConfiguracionAusenteAbortaElLote(t *testing.T) {
	f := newUseCaseFixture()

	_, err := f.uc.PushInvoices(context.Background(), &dto.PushInvoicesRequest{
		CompanyConfigCode: "NO-EXISTE",
		Invoices:          []dto.InvoiceRequest{sampleInvoice("WO-2010")},
	})

	assert.ErrorIs(t, err, domain.ErrConfigNotFound)
	assert.Zero(t, f.gateway.createInvoiceCalls)
	assert.Zero(t, f.records.failureCalls)
}

// Término de pago configurado pero inexistente en QuickBooks → fatal para el lote.
func TestPushInvoices_TerminoAusenteAbortaElLote(t *testing.T) {
	f := newUseCaseFixture()
	delete(f.gateway.terms, "Net 30")

	_, err := f.uc.PushInvoices(context.Background(), &dto.PushInvoicesRequest{
		CompanyConfigCode: testCompany,
		Invoices:          []dto.InvoiceRequest{sampleInvoice("WO-2011")},
	})

	assert.ErrorIs(t, err, domain.ErrTermNotFound)
	assert.Zero(t, f.gateway.createInvoiceCalls)
}

// Preferencia de numeración: con keepQBInvoiceNumber en false el documento
// lleva el id de la orden de trabajo.
func TestPushInvoices_NumeracionDelCaller(t *testing.T) {
	f := newUseCaseFixture()
	f.configs.configs[testCompany].KeepQBInvoiceNumber = false

	resp := f.push(t, sampleInvoice("WO-2012"))
	assert.Equal(t, "WO-2012", resp.Invoices[0].DocNumber)
}

// Las tasas de impuesto se leen una sola vez por lote y quedan inmutables
// para todas sus facturas.
func TestPushInvoices_TasasUnaVezPorLote(t *testing.T) {
	f := newUseCaseFixture()

	resp := f.push(t, sampleInvoice("WO-2013"), sampleInvoice("WO-2014"))
	require.Len(t, resp.Invoices, 2)

	assert.Equal(t, 1, f.gateway.findTaxRatesCalls, "una sola lectura de tasas para todo el lote")
}
