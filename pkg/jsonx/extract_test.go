package jsonx_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/finanzas-ai/pkg/jsonx"
)

func TestExtractObject_JSONDesnudo(t *testing.T) {
	got := jsonx.ExtractObject(`{"indices": ["invoices"], "query": {"match_all": {}}}`)
	assert.JSONEq(t, `{"indices": ["invoices"], "query": {"match_all": {}}}`, got)
}

func TestExtractObject_BloqueJSONConEtiqueta(t *testing.T) {
	in := "```json\n{\"indices\": [\"invoices\"]}\n```"
	got := jsonx.ExtractObject(in)
	assert.JSONEq(t, `{"indices": ["invoices"]}`, got)
}

func TestExtractObject_BloqueSinEtiqueta(t *testing.T) {
	in := "```\n{\"aggs\": {\"total\": {\"sum\": {\"field\": \"totalamount\"}}}}\n```"
	got := jsonx.ExtractObject(in)

	var spec map[string]any
	require.NoError(t, json.Unmarshal([]byte(got), &spec),
		"el resultado debe ser JSON parseable")
	assert.Contains(t, spec, "aggs")
}

func TestExtractObject_ProsaAlrededor(t *testing.T) {
	in := "Aquí tienes la consulta solicitada:\n{\"query\": {\"match_all\": {}}}\nEspero que sirva."
	got := jsonx.ExtractObject(in)
	assert.JSONEq(t, `{"query": {"match_all": {}}}`, got)
}

func TestExtractObject_BloqueConProsaAntes(t *testing.T) {
	in := "La consulta es la siguiente:\n```json\n{\"indices\": [\"purchases\"], \"query\": {}}\n```\nSaludos."
	got := jsonx.ExtractObject(in)
	assert.JSONEq(t, `{"indices": ["purchases"], "query": {}}`, got)
}

func TestExtractObject_SinObjeto(t *testing.T) {
	assert.Empty(t, jsonx.ExtractObject("no hay nada estructurado aquí"))
	assert.Empty(t, jsonx.ExtractObject(""))
}

func TestExtractObject_EspaciosYSaltos(t *testing.T) {
	in := "\n\n   {\"indices\": [\"items\"]}   \n"
	assert.Equal(t, `{"indices": ["items"]}`, jsonx.ExtractObject(in))
}
