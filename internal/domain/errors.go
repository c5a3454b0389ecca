package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// Los cuatro primeros son los genéricos de la aplicación; el resto forma la
// taxonomía del motor de sincronización: los errores de configuración y de
// token abortan el lote completo, los de catálogo y de envío remoto se
// registran por factura sin detener las demás.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")

	// ErrConfigNotFound no existe configuración para el código de compañía pedido (fatal para el lote).
	ErrConfigNotFound = errors.New("configuración de compañía no encontrada")
	// ErrTokenRefresh el refresh del token OAuth contra Intuit falló (fatal para el lote).
	ErrTokenRefresh = errors.New("no se pudo refrescar el token de QuickBooks")
	// ErrCredentialNotFound no hay conexión QuickBooks registrada (fatal para el lote).
	ErrCredentialNotFound = errors.New("credencial de QuickBooks no encontrada")
	// ErrTermNotFound el término de pago configurado no existe en QuickBooks (fatal para el lote).
	ErrTermNotFound = errors.New("término de pago no encontrado en QuickBooks")
	// ErrTaxAgencyNotFound la agencia de impuestos configurada no existe en QuickBooks.
	ErrTaxAgencyNotFound = errors.New("agencia de impuestos no encontrada en QuickBooks")
	// ErrItemNotFound un ítem del catálogo no existe y no es auto-creable (fatal por factura).
	ErrItemNotFound = errors.New("ítem no encontrado en el catálogo de QuickBooks")
	// ErrTaxCodeNotFound un tax code no existe y no es auto-creable (fatal por factura).
	ErrTaxCodeNotFound = errors.New("tax code no encontrado en QuickBooks")
)
