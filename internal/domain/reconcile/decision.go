// Package reconcile decide, sin tocar I/O, qué hacer con una factura que ya
// pasó la validación de impuestos: crearla limpia, reemplazar una anterior o
// crearla marcando que la referencia previa no se pudo resolver. La decisión
// es una tabla pura sobre (registro local, id del caller, lookup remoto) para
// poder probarla aislada del API de QuickBooks.
package reconcile

import "github.com/jhoicas/fleetsync-api/internal/domain/entity"

// Prior reúne las tres fuentes de verdad sobre una factura anterior del work order.
type Prior struct {
	// LocalInvoiceID id remoto registrado en el espejo local ("" si no hay
	// registro previo exitoso). Es la fuente preferida: refleja la última
	// acción confirmada de este motor.
	LocalInvoiceID string

	// CallerInvoiceID id remoto que el caller cree conocer ("" si no envió ninguno).
	CallerInvoiceID string

	// RemoteFound resultado del lookup remoto por CallerInvoiceID. Solo se
	// consulta cuando NeedsRemoteLookup devuelve true; en otro caso se ignora.
	RemoteFound bool
}

// Action es la salida de la tabla de decisión.
type Action struct {
	// DeleteInvoiceID factura remota a borrar (best-effort) antes de crear la
	// nueva. Vacío = no hay nada que borrar.
	DeleteInvoiceID string

	// Status estado que se persistirá en el espejo tras crear la nueva factura.
	Status string
}

// NeedsRemoteLookup indica si hace falta consultar QuickBooks por el id del
// caller: solo cuando no hay registro local que lo supere y el caller sí
// envió una referencia previa.
func NeedsRemoteLookup(localInvoiceID, callerInvoiceID string) bool {
	return localInvoiceID == "" && callerInvoiceID != ""
}

// Decide aplica la tabla de decisión. Todo camino termina creando exactamente
// una factura nueva; lo único que varía es si antes se borra una anterior y
// con qué estado queda el espejo.
//
//	local    caller   remoto   → borrar   estado
//	sí       (ignora) (ignora) → local    UPDATED
//	no       no       —        → —        CREATED
//	no       sí       no       → —        OLD INVOICE NOT FOUND
//	no       sí       sí       → —        DUPLICATE OLD INVOICES FOUND
func Decide(p Prior) Action {
	if p.LocalInvoiceID != "" {
		// El registro local gana siempre sobre el id del caller: es lo último
		// que este motor confirmó haber hecho.
		return Action{DeleteInvoiceID: p.LocalInvoiceID, Status: entity.StatusUpdated}
	}
	if p.CallerInvoiceID == "" {
		return Action{Status: entity.StatusCreated}
	}
	if !p.RemoteFound {
		// Referencia previa irresoluble: se deja constancia pero no bloquea
		// el envío de la factura nueva.
		return Action{Status: entity.StatusOldInvoiceNotFound}
	}
	// Existe una factura remota de la que no tenemos registro local: estado
	// inconcluso. Se crea la nueva y la vieja queda para limpieza manual.
	return Action{Status: entity.StatusDuplicateOldInvoices}
}
