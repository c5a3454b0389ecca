package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/jhoicas/fleetsync-api/internal/domain/entity"
	"github.com/jhoicas/fleetsync-api/internal/domain/reconcile"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tabla de decisión completa
// ──────────────────────────────────────────────────────────────────────────────

func TestDecide_TablaCompleta(t *testing.T) {
	cases := []struct {
		name  string
		prior reconcile.Prior
		want  reconcile.Action
	}{
		{
			name:  "primer envío: sin registro local ni id del caller",
			prior: reconcile.Prior{},
			want:  reconcile.Action{Status: entity.StatusCreated},
		},
		{
			name:  "reenvío con registro local: borrar la anterior y marcar UPDATED",
			prior: reconcile.Prior{LocalInvoiceID: "145"},
			want:  reconcile.Action{DeleteInvoiceID: "145", Status: entity.StatusUpdated},
		},
		{
			name:  "id del caller irresoluble: no se encontró en QuickBooks",
			prior: reconcile.Prior{CallerInvoiceID: "999", RemoteFound: false},
			want:  reconcile.Action{Status: entity.StatusOldInvoiceNotFound},
		},
		{
			name:  "factura remota sin registro local: estado inconcluso",
			prior: reconcile.Prior{CallerInvoiceID: "888", RemoteFound: true},
			want:  reconcile.Action{Status: entity.StatusDuplicateOldInvoices},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, reconcile.Decide(tc.prior))
		})
	}
}

// Regla de desempate: cuando hay registro local y además el caller envía otro
// id, gana el registro local (refleja la última acción confirmada del motor).
func TestDecide_RegistroLocalGanaSobreIdDelCaller(t *testing.T) {
	got := reconcile.Decide(reconcile.Prior{
		LocalInvoiceID:  "145",
		CallerInvoiceID: "999",
		RemoteFound:     true, // irrelevante: el lookup ni siquiera debe consultarse
	})

	assert.Equal(t, "145", got.DeleteInvoiceID, "se borra la factura del registro local, no la del caller")
	assert.Equal(t, entity.StatusUpdated, got.Status)
}

// Un registro previo de FAILURE no trae id remoto, así que equivale a primer envío.
func TestDecide_RegistroFallidoPrevioEquivaleAPrimerEnvio(t *testing.T) {
	got := reconcile.Decide(reconcile.Prior{LocalInvoiceID: ""})
	assert.Equal(t, entity.StatusCreated, got.Status)
	assert.Empty(t, got.DeleteInvoiceID)
}

// ──────────────────────────────────────────────────────────────────────────────
// NeedsRemoteLookup
// ──────────────────────────────────────────────────────────────────────────────

func TestNeedsRemoteLookup(t *testing.T) {
	assert.True(t, reconcile.NeedsRemoteLookup("", "999"),
		"sin registro local y con id del caller hay que consultar QuickBooks")
	assert.False(t, reconcile.NeedsRemoteLookup("145", "999"),
		"el registro local hace innecesario el lookup")
	assert.False(t, reconcile.NeedsRemoteLookup("", ""),
		"sin referencia previa no hay nada que consultar")
}
