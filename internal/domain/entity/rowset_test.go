package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/finanzas-ai/internal/domain/entity"
)

func TestNewRowset_UnificaColumnas(t *testing.T) {
	rs := entity.NewRowset([]entity.Row{
		{"number": "1001", "country": "EE"},
		{"number": "1002", "salesman": "MARI"},
	})

	require.Equal(t, 2, rs.Len())
	assert.ElementsMatch(t, []string{"number", "country", "salesman"}, rs.Columns)

	// La columna ausente en una fila debe existir como nulo explícito,
	// nunca como clave faltante.
	v, ok := rs.Rows[0]["salesman"]
	require.True(t, ok, "la fila debe contener la columna aunque el XML no la trajera")
	assert.Nil(t, v)

	v, ok = rs.Rows[1]["country"]
	require.True(t, ok)
	assert.Nil(t, v)
}

func TestNewRowset_Vacio(t *testing.T) {
	rs := entity.NewRowset(nil)
	assert.Zero(t, rs.Len())
	assert.Empty(t, rs.Columns)

	var nilRS *entity.Rowset
	assert.Zero(t, nilRS.Len(), "Len sobre nil no debe fallar")
}

func TestByIndex(t *testing.T) {
	typ, ok := entity.ByIndex("invoices")
	require.True(t, ok)
	assert.Equal(t, "invoice", typ.What)
	assert.Equal(t, "number", typ.KeyField)
	assert.Equal(t, "float", typ.Mapping["totalamount"])

	_, ok = entity.ByIndex("nomina")
	assert.False(t, ok)
}

func TestAll_OrdenYClaves(t *testing.T) {
	require.Len(t, entity.All, 8)
	assert.Equal(t, "invoices", entity.All[0].Index, "las facturas siempre se procesan primero")
	for _, typ := range entity.All {
		assert.NotEmpty(t, typ.KeyField, typ.Index)
		assert.Equal(t, "date", typ.Mapping["indexed_at"], typ.Index)
	}
}
