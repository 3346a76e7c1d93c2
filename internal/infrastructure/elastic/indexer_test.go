package elastic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/finanzas-ai/internal/domain/entity"
	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

// newTestClient apunta el cliente oficial a un servidor de prueba. La cabecera
// X-Elastic-Product es obligatoria: el cliente v8 valida el producto en la
// primera respuesta.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*elasticsearch.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, srv
}

func TestTransformRow(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	when := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	doc := transformRow(entity.Row{
		"number":          float64(1001),
		"transactiondate": when,
		"comment":         nil,
		"country":         "EE",
	}, now)

	assert.Equal(t, "2024-03-15T00:00:00Z", doc["transactiondate"], "las fechas se serializan a RFC3339")
	assert.Equal(t, "2024-05-01T12:00:00Z", doc["indexed_at"], "indexed_at se estampa con la hora de carga")
	assert.Equal(t, "EE", doc["country"])

	// El nulo sobrevive como null explícito hasta el JSON final.
	v, ok := doc["comment"]
	require.True(t, ok)
	assert.Nil(t, v)
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"comment":null`)
}

func TestDocID(t *testing.T) {
	assert.Equal(t, "1001", docID(entity.Invoices, map[string]any{"number": float64(1001)}))
	assert.Equal(t, "1000000", docID(entity.Invoices, map[string]any{"number": float64(1000000)}),
		"una clave numérica grande no debe formatearse en notación exponencial")
	assert.Equal(t, "1001.5", docID(entity.Invoices, map[string]any{"number": 1001.5}))
	assert.Equal(t, "C-9", docID(entity.Customers, map[string]any{"code": "C-9"}))
	assert.Empty(t, docID(entity.Invoices, map[string]any{"number": nil}), "clave nula: id asignado por el almacén")
	assert.Empty(t, docID(entity.Invoices, map[string]any{"number": ""}), "clave vacía: id asignado por el almacén")
	assert.Empty(t, docID(entity.Invoices, map[string]any{"country": "EE"}), "clave ausente: id asignado por el almacén")
}

func TestBuildBulkBody(t *testing.T) {
	body, err := buildBulkBody(entity.Customers, []map[string]any{
		{"code": "C1", "name": "ACME"},
		{"code": nil, "name": "Sin código"},
	})
	require.NoError(t, err)

	sc := bufio.NewScanner(bytes.NewReader(body))
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, 4, "cada documento son dos líneas NDJSON: acción y fuente")

	var meta1 map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &meta1))
	assert.Equal(t, "C1", meta1["index"]["_id"])

	var meta2 map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &meta2))
	_, hasID := meta2["index"]["_id"]
	assert.False(t, hasID, "sin clave no se fija _id")
}

func TestParseBulkResponse(t *testing.T) {
	resp := `{"errors":true,"items":[
		{"index":{"_id":"1","status":201}},
		{"index":{"_id":"2","status":400,"error":{"type":"mapper_parsing_exception","reason":"failed to parse"}}},
		{"index":{"_id":"3","status":200}}
	]}`

	ok, failed, samples, err := parseBulkResponse(strings.NewReader(resp))
	require.NoError(t, err)
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)
	require.Len(t, samples, 1)
	assert.Contains(t, samples[0], "mapper_parsing_exception")
}

func TestLoad_RowsetVacioNoLlamaAlAlmacen(t *testing.T) {
	called := false
	es, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	defer srv.Close()

	ix := NewIndexer(es, testLogger())
	indexed, failed, err := ix.Load(context.Background(), entity.Invoices, entity.NewRowset(nil))
	require.NoError(t, err)
	assert.Zero(t, indexed)
	assert.Zero(t, failed)
	assert.False(t, called, "con cero filas no debe haber ninguna llamada al almacén")
}

func TestLoad_BulkConConteos(t *testing.T) {
	var bulkBodies [][]byte
	es, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/_bulk") || strings.HasSuffix(r.URL.Path, "/_bulk") {
			var buf bytes.Buffer
			_, _ = buf.ReadFrom(r.Body)
			bulkBodies = append(bulkBodies, buf.Bytes())
			_, _ = w.Write([]byte(`{"errors":false,"items":[
				{"index":{"_id":"C1","status":201}},
				{"index":{"_id":"C2","status":201}},
				{"index":{"_id":"C3","status":201}}
			]}`))
			return
		}
		http.NotFound(w, r)
	})
	defer srv.Close()

	rs := entity.NewRowset([]entity.Row{
		{"code": "C1", "name": "ACME"},
		{"code": "C2", "name": "Umbrella"},
		{"code": "C3"},
	})

	ix := NewIndexer(es, testLogger())
	indexed, failed, err := ix.Load(context.Background(), entity.Customers, rs)
	require.NoError(t, err)
	assert.Equal(t, 3, indexed)
	assert.Zero(t, failed)
	require.Len(t, bulkBodies, 1, "tres filas caben en un solo lote")
}

func TestLoadAll_OmiteEntidadesVacias(t *testing.T) {
	bulkIndexes := map[string]bool{}
	es, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodHead:
			// Todas las colecciones "existen": EnsureSchema no crea nada.
			w.WriteHeader(http.StatusOK)
		case strings.Contains(r.URL.Path, "_bulk"):
			// /<index>/_bulk
			idx := strings.TrimPrefix(r.URL.Path, "/")
			idx = strings.TrimSuffix(idx, "/_bulk")
			bulkIndexes[idx] = true
			_, _ = w.Write([]byte(`{"errors":false,"items":[{"index":{"_id":"x","status":201}}]}`))
		default:
			http.NotFound(w, r)
		}
	})
	defer srv.Close()

	ds := entity.Dataset{
		"invoices":  entity.NewRowset(nil), // cero filas: debe omitirse
		"customers": entity.NewRowset([]entity.Row{{"code": "C1"}}),
	}

	ix := NewIndexer(es, testLogger())
	require.NoError(t, ix.LoadAll(context.Background(), ds))

	assert.True(t, bulkIndexes["customers"], "customers debe cargarse")
	assert.False(t, bulkIndexes["invoices"], "invoices sin filas no debe generar bulk")
}

func TestEnsureSchema_CrearFallaBorraYRecrea(t *testing.T) {
	var invoiceOps []string
	invoiceCreates := 0
	es, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		index := strings.TrimPrefix(r.URL.Path, "/")
		if index == "invoices" {
			invoiceOps = append(invoiceOps, r.Method)
		}
		switch r.Method {
		case http.MethodHead:
			// Ninguna colección existe todavía.
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			if index == "invoices" {
				invoiceCreates++
				if invoiceCreates == 1 {
					// Primera creación rechazada: debe dispararse el
					// borrado y el reintento.
					w.WriteHeader(http.StatusBadRequest)
					_, _ = w.Write([]byte(`{"error":{"type":"resource_already_exists_exception"}}`))
					return
				}
			}
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		case http.MethodDelete:
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		default:
			http.NotFound(w, r)
		}
	})
	defer srv.Close()

	ix := NewIndexer(es, testLogger())
	ix.EnsureSchema(context.Background())

	assert.Equal(t, []string{"HEAD", "PUT", "DELETE", "PUT"}, invoiceOps,
		"crear fallido debe seguirse de borrar y recrear")
	assert.Equal(t, 2, invoiceCreates)
}

func TestLoad_MasDeUnLote(t *testing.T) {
	var chunkDocs []int
	es, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "_bulk") {
			http.NotFound(w, r)
			return
		}
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		// Dos líneas NDJSON por documento.
		docs := bytes.Count(buf.Bytes(), []byte("\n")) / 2
		chunkDocs = append(chunkDocs, docs)

		items := make([]string, docs)
		for i := range items {
			items[i] = `{"index":{"_id":"x","status":201}}`
		}
		_, _ = w.Write([]byte(`{"errors":false,"items":[` + strings.Join(items, ",") + `]}`))
	})
	defer srv.Close()

	rows := make([]entity.Row, 501)
	for i := range rows {
		rows[i] = entity.Row{"code": fmt.Sprintf("C%d", i)}
	}

	ix := NewIndexer(es, testLogger())
	indexed, failed, err := ix.Load(context.Background(), entity.Customers, entity.NewRowset(rows))
	require.NoError(t, err)

	assert.Equal(t, 501, indexed)
	assert.Zero(t, failed)
	assert.Equal(t, []int{500, 1}, chunkDocs, "501 filas deben partirse en un lote lleno y uno de resto")
}

func TestMappingBody(t *testing.T) {
	body := mappingBody(entity.Invoices)
	mappings := body["mappings"].(map[string]any)
	props := mappings["properties"].(map[string]any)
	assert.Equal(t, map[string]string{"type": "float"}, props["totalamount"])
	assert.Equal(t, map[string]string{"type": "date"}, props["transactiondate"])
	assert.Equal(t, map[string]string{"type": "keyword"}, props["number"])
}
