package elastic

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/finanzas-ai/internal/application/dto"
	"github.com/jhoicas/finanzas-ai/internal/domain"
)

func TestBuildSearchBody_Defaults(t *testing.T) {
	indices, body := buildSearchBody(dto.QuerySpec{})

	assert.Equal(t, []string{"invoices"}, indices)
	assert.Equal(t, map[string]any{"match_all": map[string]any{}}, body["query"])
	assert.Equal(t, maxDocs, body["size"])
	_, hasAggs := body["aggs"]
	assert.False(t, hasAggs)
}

func TestBuildSearchBody_SoloAgregaciones(t *testing.T) {
	aggs := map[string]any{
		"revenue": map[string]any{"sum": map[string]any{"field": "totalamount"}},
	}
	indices, body := buildSearchBody(dto.QuerySpec{
		Indices: []string{"invoices", "purchases"},
		Aggs:    aggs,
	})

	assert.Equal(t, []string{"invoices", "purchases"}, indices)
	assert.Equal(t, 0, body["size"], "con agregaciones no se piden documentos")
	assert.Equal(t, aggs, body["aggs"])
}

func TestExecute_ConsultaExitosa(t *testing.T) {
	es, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invoices/_search", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"hits": {
				"total": {"value": 2},
				"hits": [
					{"_source": {"number": "1001", "totalamount": 120.5}},
					{"_source": {"number": "1002", "totalamount": 80}}
				]
			},
			"aggregations": {"revenue": {"value": 200.5}}
		}`))
	})
	defer srv.Close()

	s := NewSearcher(es, testLogger())
	res, err := s.Execute(context.Background(), dto.QuerySpec{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, "1001", res.Hits[0]["number"])
	require.Contains(t, res.Aggregations, "revenue")
}

func TestExecute_RechazoDelAlmacen(t *testing.T) {
	es, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"search_phase_execution_exception","reason":"No mapping found"}}`))
	})
	defer srv.Close()

	s := NewSearcher(es, testLogger())
	_, err := s.Execute(context.Background(), dto.QuerySpec{
		Query: map[string]any{"match": map[string]any{"campo_inexistente": "x"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrQuery)
	assert.Contains(t, err.Error(), "No mapping found")
}

func TestExecute_CredencialesInvalidas(t *testing.T) {
	es, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"security_exception"}}`))
	})
	defer srv.Close()

	s := NewSearcher(es, testLogger())
	_, err := s.Execute(context.Background(), dto.QuerySpec{})
	require.ErrorIs(t, err, domain.ErrAuth)
}
