package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fleetsync-api/internal/application/dto"
	"github.com/jhoicas/fleetsync-api/internal/application/sync"
	"github.com/jhoicas/fleetsync-api/internal/domain"
	"github.com/jhoicas/fleetsync-api/internal/domain/entity"
	"github.com/jhoicas/fleetsync-api/internal/domain/repository"
)

// SyncHandler maneja el envío de lotes de facturas hacia QuickBooks (protegido).
type SyncHandler struct {
	uc      *sync.SyncUseCase
	records repository.RecordRepository
}

// NewSyncHandler construye el handler de sincronización.
func NewSyncHandler(uc *sync.SyncUseCase, records repository.RecordRepository) *SyncHandler {
	return &SyncHandler{uc: uc, records: records}
}

// PushInvoices godoc
// @Summary      Enviar lote de facturas a QuickBooks
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PushInvoicesRequest  true  "qbCompanyConfigCode + invoiceList"
// @Success      200   {object}  dto.PushInvoicesResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/qb/invoices [post]
func (h *SyncHandler) PushInvoices(c *fiber.Ctx) error {
	var in dto.PushInvoicesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.CompanyConfigCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "qbCompanyConfigCode es requerido"})
	}
	if len(in.Invoices) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invoiceList no puede estar vacío"})
	}
	out, err := h.uc.PushInvoices(c.Context(), &in)
	if err != nil {
		// Solo las precondiciones del lote llegan aquí; los fallos por factura
		// viajan dentro de la respuesta.
		switch {
		case errors.Is(err, domain.ErrConfigNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "CONFIG_NOT_FOUND", Message: "no existe configuración para esa compañía"})
		case errors.Is(err, domain.ErrCredentialNotFound):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "QB_NOT_CONNECTED", Message: "no hay credenciales de QuickBooks registradas"})
		case errors.Is(err, domain.ErrTokenRefresh):
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "TOKEN_REFRESH", Message: "no fue posible renovar el token de QuickBooks"})
		case errors.Is(err, domain.ErrTermNotFound):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "TERM_NOT_FOUND", Message: "el término de pago configurado no existe en QuickBooks"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// ListRecords godoc
// @Summary      Listar registros de conciliación de una compañía
// @Tags         sync
// @Produce      json
// @Param        company  query  string  true   "código de configuración"
// @Param        limit    query  int     false  "tamaño de página"
// @Param        offset   query  int     false  "desplazamiento"
// @Success      200  {object}  dto.PageResponse[dto.SyncRecordResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/qb/records [get]
func (h *SyncHandler) ListRecords(c *fiber.Ctx) error {
	company := c.Query("company")
	if company == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "company es requerido"})
	}
	// Filtro puntual por work order: devuelve el registro único si existe.
	if workOrderID := c.Query("workOrderId"); workOrderID != "" {
		rec, err := h.records.FindByWorkOrder(c.Context(), workOrderID, company)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
		if rec == nil {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "RECORD_NOT_FOUND", Message: "no hay registro para ese work order"})
		}
		return c.JSON(toRecordResponse(rec))
	}

	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.Normalize()

	records, err := h.records.ListByCompany(c.Context(), company, page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	items := make([]dto.SyncRecordResponse, 0, len(records))
	for _, r := range records {
		items = append(items, toRecordResponse(r))
	}
	return c.JSON(dto.PageResponse[dto.SyncRecordResponse]{
		Items:  items,
		Total:  len(items),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

func toRecordResponse(r *entity.SyncRecord) dto.SyncRecordResponse {
	return dto.SyncRecordResponse{
		WorkOrderID: r.WorkOrderID,
		CompanyCode: r.CompanyCode,
		QBInvoiceID: r.QBInvoiceID,
		DocNumber:   r.DocNumber,
		Status:      r.Status,
		InvoiceDate: r.InvoiceDate.Format("2006-01-02"),
		ProcessedAt: r.ProcessedAt.Format(time.RFC3339),
		Error:       r.ErrorMessage,
	}
}
