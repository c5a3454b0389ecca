package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/fleetsync-api/internal/application/dto"
	"github.com/jhoicas/fleetsync-api/internal/domain/entity"
	"github.com/jhoicas/fleetsync-api/internal/domain/repository"
)

// ConfigHandler administra la configuración de facturación por compañía (protegido).
type ConfigHandler struct {
	configs repository.ConfigRepository
}

// NewConfigHandler construye el handler de configuración.
func NewConfigHandler(configs repository.ConfigRepository) *ConfigHandler {
	return &ConfigHandler{configs: configs}
}

// Upsert crea o reemplaza la configuración de una compañía.
// POST /api/qb/config
func (h *ConfigHandler) Upsert(c *fiber.Ctx) error {
	var in dto.CompanyConfigRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "code es requerido"})
	}
	cfg := &entity.CompanyConfig{
		Code:                in.Code,
		Name:                in.Name,
		Terms:               in.Terms,
		KeepQBInvoiceNumber: in.KeepQBInvoiceNumber,
		SalesTaxAgency:      in.SalesTaxAgency,
	}
	if err := h.configs.Upsert(c.Context(), cfg); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(toConfigResponse(cfg))
}

// GetByCode devuelve la configuración de una compañía.
// GET /api/qb/config/:code
func (h *ConfigHandler) GetByCode(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "code requerido"})
	}
	cfg, err := h.configs.GetByCode(c.Context(), code)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if cfg == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "CONFIG_NOT_FOUND", Message: "configuración no encontrada"})
	}
	return c.JSON(toConfigResponse(cfg))
}

// List devuelve todas las configuraciones registradas.
// GET /api/qb/config
func (h *ConfigHandler) List(c *fiber.Ctx) error {
	configs, err := h.configs.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.CompanyConfigResponse, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, toConfigResponse(cfg))
	}
	return c.JSON(out)
}

func toConfigResponse(cfg *entity.CompanyConfig) dto.CompanyConfigResponse {
	return dto.CompanyConfigResponse{
		Code:                cfg.Code,
		Name:                cfg.Name,
		Terms:               cfg.Terms,
		KeepQBInvoiceNumber: cfg.KeepQBInvoiceNumber,
		SalesTaxAgency:      cfg.SalesTaxAgency,
	}
}
