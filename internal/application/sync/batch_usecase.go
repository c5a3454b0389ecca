package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/fleetsync-api/internal/application/dto"
	"github.com/jhoicas/fleetsync-api/internal/domain"
	"github.com/jhoicas/fleetsync-api/internal/domain/entity"
	"github.com/jhoicas/fleetsync-api/internal/domain/reconcile"
	"github.com/jhoicas/fleetsync-api/internal/domain/repository"
	"github.com/jhoicas/fleetsync-api/internal/domain/tax"
	"github.com/jhoicas/fleetsync-api/internal/infrastructure/qbo"
	"github.com/jhoicas/fleetsync-api/pkg/logger"
)

// Mensajes de resultado por factura (los consume el sistema de órdenes de trabajo).
const (
	msgInvoiceCreated = "Invoice created Successfully."
	msgTaxMismatch    = "Sales Tax does not match for company"
)

// SyncUseCase es el motor de conciliación y envío de facturas: orquesta token,
// validación de impuestos, resolución de cliente y catálogo, decisión
// crear/reemplazar y el espejo local, una factura a la vez.
type SyncUseCase struct {
	tokens  *TokenManager
	gateway LedgerGateway
	configs repository.ConfigRepository
	records repository.RecordRepository
	log     *logger.Logger

	now func() time.Time // inyectable en tests
}

// NewSyncUseCase construye el use case con todas sus dependencias.
func NewSyncUseCase(
	tokens *TokenManager,
	gateway LedgerGateway,
	configs repository.ConfigRepository,
	records repository.RecordRepository,
	log *logger.Logger,
) *SyncUseCase {
	return &SyncUseCase{
		tokens:  tokens,
		gateway: gateway,
		configs: configs,
		records: records,
		log:     log.Component("sync"),
		now:     time.Now,
	}
}

// batchContext estado inmutable compartido por todas las facturas de un lote:
// sesión, configuración de compañía, tasas de impuesto frescas, rama
// jurisdiccional y término de pago resuelto.
type batchContext struct {
	session   qbo.Session
	cfg       *entity.CompanyConfig
	rates     []tax.LedgerRate
	flatTax   bool
	termID    string
	catalog   *CatalogResolver
	builder   *LineBuilder
	customers *CustomerResolver
}

// PushInvoices procesa un lote de facturas contra QuickBooks. Los errores de
// configuración y de token abortan el lote entero antes de tocar factura
// alguna; los errores por factura se registran como FAILURE en el espejo y no
// detienen a las que siguen.
func (uc *SyncUseCase) PushInvoices(ctx context.Context, req *dto.PushInvoicesRequest) (*dto.PushInvoicesResponse, error) {
	if req.CompanyConfigCode == "" || len(req.Invoices) == 0 {
		return nil, fmt.Errorf("%w: se requiere qbCompanyConfigCode y al menos una factura", domain.ErrInvalidInput)
	}

	bc, err := uc.prepareBatch(ctx, req.CompanyConfigCode)
	if err != nil {
		return nil, err
	}

	results := make([]dto.InvoiceResult, 0, len(req.Invoices))
	for i := range req.Invoices {
		inv := &req.Invoices[i]
		uc.log.Info().
			Str("workOrderId", inv.WorkOrderID).
			Str("company", req.CompanyConfigCode).
			Msg("procesando factura")
		result := uc.processInvoice(ctx, bc, req.CompanyConfigCode, inv)
		uc.log.Info().
			Str("workOrderId", inv.WorkOrderID).
			Str("status", result.Status).
			Msg("factura procesada")
		results = append(results, result)
	}

	return &dto.PushInvoicesResponse{Message: "Invoices processed", Invoices: results}, nil
}

// prepareBatch resuelve todo lo fatal-para-el-lote: configuración, sesión,
// tasas de impuesto, país del tenant y término de pago.
func (uc *SyncUseCase) prepareBatch(ctx context.Context, companyCode string) (*batchContext, error) {
	cfg, err := uc.configs.GetByCode(ctx, companyCode)
	if err != nil {
		return nil, fmt.Errorf("cargar configuración de %q: %w", companyCode, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, companyCode)
	}

	session, err := uc.tokens.Session(ctx)
	if err != nil {
		return nil, err
	}

	// Las tasas se leen una vez por lote y quedan inmutables para su duración.
	qbRates, err := uc.gateway.FindTaxRates(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("leer tasas de impuesto: %w", err)
	}
	rates := make([]tax.LedgerRate, 0, len(qbRates))
	for _, r := range qbRates {
		rates = append(rates, tax.LedgerRate{ID: r.ID, Name: r.Name, Rate: r.RateValue, Active: r.Active})
	}

	// La rama jurisdiccional se decide una sola vez por lote.
	info, err := uc.gateway.GetCompanyInfo(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("leer datos del tenant: %w", err)
	}
	flatTax := info.Country != "" && !strings.EqualFold(info.Country, "US")

	catalog := NewCatalogResolver(uc.gateway, session, cfg.SalesTaxAgency, uc.log)

	termID := ""
	if cfg.Terms != "" {
		termID, err = catalog.TermID(ctx, cfg.Terms)
		if err != nil {
			return nil, err
		}
	}

	return &batchContext{
		session:   session,
		cfg:       cfg,
		rates:     rates,
		flatTax:   flatTax,
		termID:    termID,
		catalog:   catalog,
		builder:   NewLineBuilder(catalog, uc.log),
		customers: NewCustomerResolver(uc.gateway, uc.log),
	}, nil
}

// processInvoice ejecuta el pipeline completo para una factura. Nunca devuelve
// error: todo fallo se registra como FAILURE en el espejo y se reporta en el
// resultado, aislando a las demás facturas del lote.
func (uc *SyncUseCase) processInvoice(ctx context.Context, bc *batchContext, companyCode string, inv *dto.InvoiceRequest) dto.InvoiceResult {
	invoiceDate := uc.parseInvoiceDate(inv.InvoiceDate)

	// 1. Validación de impuestos: cualquier discrepancia bloquea la factura
	// antes de tocar cliente, catálogo o factura remota.
	declared := tax.DeclaredFromInvoice(declaredTaxes(inv.PartsTax), inv.LaborTaxSameAsPart, inv.LaborTaxPercentage, inv.LaborTax)
	if mismatches := tax.FindMismatches(declared, bc.rates); len(mismatches) > 0 {
		if _, err := uc.records.UpsertFailure(ctx, inv.WorkOrderID, companyCode, msgTaxMismatch, invoiceDate); err != nil {
			uc.log.Error().Err(err).Str("workOrderId", inv.WorkOrderID).Msg("no se pudo registrar el fallo de impuestos")
		}
		return dto.InvoiceResult{
			WorkOrderID: inv.WorkOrderID,
			Status:      entity.StatusFailure,
			Message:     msgTaxMismatch,
			TaxDetails:  mismatches,
		}
	}

	// 2. Decisión crear/reemplazar sobre (registro local, id del caller,
	// lookup remoto). Un registro FAILURE previo no aporta id remoto: cuenta
	// como primer envío.
	prior := reconcile.Prior{CallerInvoiceID: inv.QBInvoiceID}
	rec, err := uc.records.FindByWorkOrder(ctx, inv.WorkOrderID, companyCode)
	if err != nil {
		return uc.fail(ctx, inv.WorkOrderID, companyCode, invoiceDate, fmt.Errorf("leer registro previo: %w", err))
	}
	if rec != nil && rec.Status != entity.StatusFailure && rec.QBInvoiceID != "" {
		prior.LocalInvoiceID = rec.QBInvoiceID
	}
	if reconcile.NeedsRemoteLookup(prior.LocalInvoiceID, prior.CallerInvoiceID) {
		// GetInvoice mapea "no existe" a nil; un error de transporte aquí se
		// trata igual que no encontrado: la referencia previa no se pudo
		// resolver y eso no bloquea el envío nuevo.
		remote, lerr := uc.gateway.GetInvoice(ctx, bc.session, prior.CallerInvoiceID)
		if lerr != nil {
			uc.log.Warn().Err(lerr).Str("qbInvoiceId", prior.CallerInvoiceID).Msg("lookup de factura previa falló")
		}
		prior.RemoteFound = remote != nil
	}
	action := reconcile.Decide(prior)

	// 3. Cliente y líneas.
	customer, err := bc.customers.ResolveOrCreate(ctx, bc.session, inv.To)
	if err != nil {
		return uc.fail(ctx, inv.WorkOrderID, companyCode, invoiceDate, err)
	}
	lines, taxDetail, err := bc.builder.Build(ctx, inv, bc.flatTax)
	if err != nil {
		return uc.fail(ctx, inv.WorkOrderID, companyCode, invoiceDate, err)
	}

	// 4. Borrado best-effort de la factura anterior conocida. QuickBooks no
	// tiene reemplazo atómico: si el borrado falla se deja constancia y la
	// vieja queda para limpieza manual, pero la nueva se crea igual.
	if action.DeleteInvoiceID != "" {
		uc.deleteBestEffort(ctx, bc.session, action.DeleteInvoiceID, inv.WorkOrderID)
	}

	// 5. Crear la factura nueva. Todo camino que llega aquí hace exactamente
	// una creación remota.
	payload := uc.buildInvoice(bc, inv, customer.ID, lines, taxDetail)
	created, err := uc.gateway.CreateInvoice(ctx, bc.session, payload)
	if err != nil {
		return uc.fail(ctx, inv.WorkOrderID, companyCode, invoiceDate, fmt.Errorf("crear factura en QuickBooks: %w", err))
	}

	// 6. Un solo upsert de éxito en el espejo local.
	if _, err := uc.records.UpsertSuccess(ctx, inv.WorkOrderID, companyCode, created.ID, created.DocNumber, action.Status, invoiceDate); err != nil {
		uc.log.Error().Err(err).Str("workOrderId", inv.WorkOrderID).Msg("no se pudo registrar el éxito en el espejo")
	}

	return dto.InvoiceResult{
		WorkOrderID: inv.WorkOrderID,
		Status:      action.Status,
		Message:     msgInvoiceCreated,
		QBInvoiceID: created.ID,
		DocNumber:   created.DocNumber,
	}
}

// buildInvoice arma el payload de la factura remota.
func (uc *SyncUseCase) buildInvoice(bc *batchContext, inv *dto.InvoiceRequest, customerID string, lines []qbo.Line, taxDetail *qbo.TxnTaxDetail) *qbo.Invoice {
	total := inv.FinalTotal
	payload := &qbo.Invoice{
		CustomerRef:  qbo.Ref{Value: customerID},
		TxnDate:      inv.InvoiceDate,
		DueDate:      inv.InvoiceDate,
		Line:         lines,
		TxnTaxDetail: taxDetail,
		TotalAmt:     &total,
		BillAddr: &qbo.Address{
			Line1:                  inv.From.Address.Line1,
			City:                   inv.From.Address.City,
			CountrySubDivisionCode: inv.From.Address.State,
			PostalCode:             inv.From.Address.ZipCode,
			Country:                inv.From.Address.Country,
		},
	}
	if bc.termID != "" {
		payload.SalesTermRef = &qbo.Ref{Value: bc.termID}
	}
	// Preferencia de numeración: si la compañía no deja que QuickBooks asigne
	// su propio número, el documento lleva el id de la orden de trabajo.
	if !bc.cfg.KeepQBInvoiceNumber {
		payload.DocNumber = inv.WorkOrderID
	}
	if inv.PONumber != "" {
		payload.PrivateNote = "PO: " + inv.PONumber
	}
	return payload
}

// deleteBestEffort intenta borrar la factura remota anterior. Necesita el
// SyncToken vigente, así que primero la relee; cualquier fallo se loguea y no
// escala.
func (uc *SyncUseCase) deleteBestEffort(ctx context.Context, s qbo.Session, invoiceID, workOrderID string) {
	old, err := uc.gateway.GetInvoice(ctx, s, invoiceID)
	if err != nil || old == nil {
		uc.log.Warn().Err(err).
			Str("workOrderId", workOrderID).
			Str("qbInvoiceId", invoiceID).
			Msg("factura anterior no recuperable, se omite el borrado")
		return
	}
	if err := uc.gateway.DeleteInvoice(ctx, s, old.ID, old.SyncToken); err != nil {
		uc.log.Warn().Err(err).
			Str("workOrderId", workOrderID).
			Str("qbInvoiceId", invoiceID).
			Msg("borrado de factura anterior falló, queda para limpieza manual")
	}
}

// fail registra un fallo por factura en el espejo y arma el resultado FAILURE
// conservando el texto original del error remoto.
func (uc *SyncUseCase) fail(ctx context.Context, workOrderID, companyCode string, invoiceDate time.Time, cause error) dto.InvoiceResult {
	uc.log.Error().Err(cause).Str("workOrderId", workOrderID).Msg("factura fallida")
	if _, err := uc.records.UpsertFailure(ctx, workOrderID, companyCode, cause.Error(), invoiceDate); err != nil {
		uc.log.Error().Err(err).Str("workOrderId", workOrderID).Msg("no se pudo registrar el fallo en el espejo")
	}
	return dto.InvoiceResult{
		WorkOrderID: workOrderID,
		Status:      entity.StatusFailure,
		Message:     cause.Error(),
	}
}

// parseInvoiceDate interpreta la fecha de la factura (YYYY-MM-DD); si no
// parsea se usa el instante actual para el registro del espejo.
func (uc *SyncUseCase) parseInvoiceDate(raw string) time.Time {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t
	}
	return uc.now()
}

// declaredTaxes adapta los impuestos declarados del DTO al dominio.
func declaredTaxes(in []dto.DeclaredTax) []tax.Declared {
	out := make([]tax.Declared, 0, len(in))
	for _, t := range in {
		out = append(out, tax.Declared{Name: t.Name, Code: t.Code, Rate: t.Tax, Amount: t.TaxAmount})
	}
	return out
}
