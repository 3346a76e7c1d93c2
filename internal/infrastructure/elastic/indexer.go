package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"github.com/jhoicas/finanzas-ai/internal/domain/entity"
	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

const (
	// bulkChunkSize documentos por petición bulk.
	bulkChunkSize = 500
	// failureSampleSize fallos por entidad que se registran en detalle.
	failureSampleSize = 5
)

// Indexer carga Rowsets como documentos en las colecciones del almacén.
type Indexer struct {
	es  *elasticsearch.Client
	log *logger.Logger
	// now inyectable para tests; estampa indexed_at.
	now func() time.Time
}

// NewIndexer construye el cargador.
func NewIndexer(es *elasticsearch.Client, log *logger.Logger) *Indexer {
	return &Indexer{es: es, log: log.Component("indexer"), now: time.Now}
}

// EnsureSchema crea la colección de cada tipo de entidad con su mapeo fijo si
// no existe. Si la creación falla (p. ej. colección existente con mapeo
// incompatible) intenta borrar y recrear antes de rendirse; el fallo final se
// registra y no detiene a las demás colecciones.
func (ix *Indexer) EnsureSchema(ctx context.Context) {
	for _, typ := range entity.All {
		exists, err := ix.indexExists(ctx, typ.Index)
		if err != nil {
			ix.log.Error().Err(err).Str("index", typ.Index).Msg("verificar existencia de la colección")
			continue
		}
		if exists {
			ix.log.Debug().Str("index", typ.Index).Msg("la colección ya existe")
			continue
		}

		if err := ix.createIndex(ctx, typ); err != nil {
			ix.log.Warn().Err(err).Str("index", typ.Index).Msg("crear colección falló; se intenta borrar y recrear")
			if err := ix.deleteIndex(ctx, typ.Index); err != nil {
				ix.log.Error().Err(err).Str("index", typ.Index).Msg("borrar colección")
				continue
			}
			if err := ix.createIndex(ctx, typ); err != nil {
				ix.log.Error().Err(err).Str("index", typ.Index).Msg("recrear colección")
				continue
			}
			ix.log.Info().Str("index", typ.Index).Msg("colección recreada")
			continue
		}
		ix.log.Info().Str("index", typ.Index).Msg("colección creada")
	}
}

// Load escribe las filas como documentos en lotes acotados. La escritura es de
// mejor esfuerzo: un documento rechazado no aborta el lote. Devuelve cuántos
// documentos se indexaron y cuántos fallaron; una muestra acotada de fallos se
// registra en el log.
func (ix *Indexer) Load(ctx context.Context, typ entity.Type, rs *entity.Rowset) (indexed, failed int, err error) {
	if rs.Len() == 0 {
		ix.log.Warn().Str("index", typ.Index).Msg("rowset vacío, se omite la carga")
		return 0, 0, nil
	}

	now := ix.now()
	docs := make([]map[string]any, 0, rs.Len())
	for _, row := range rs.Rows {
		docs = append(docs, transformRow(row, now))
	}

	logged := 0
	for start := 0; start < len(docs); start += bulkChunkSize {
		end := start + bulkChunkSize
		if end > len(docs) {
			end = len(docs)
		}

		body, err := buildBulkBody(typ, docs[start:end])
		if err != nil {
			return indexed, failed, fmt.Errorf("elastic: construir lote bulk: %w", err)
		}

		res, err := ix.es.Bulk(bytes.NewReader(body),
			ix.es.Bulk.WithContext(ctx),
			ix.es.Bulk.WithIndex(typ.Index),
		)
		if err != nil {
			return indexed, failed, fmt.Errorf("elastic: bulk %s: %w", typ.Index, err)
		}

		ok, bad, samples, perr := parseBulkResponse(res.Body)
		res.Body.Close()
		if perr != nil {
			return indexed, failed, fmt.Errorf("elastic: respuesta bulk %s: %w", typ.Index, perr)
		}
		indexed += ok
		failed += bad
		for _, s := range samples {
			if logged >= failureSampleSize {
				break
			}
			logged++
			ix.log.Error().Str("index", typ.Index).Str("detalle", s).Msg("documento rechazado")
		}
	}

	ix.log.Info().Str("index", typ.Index).Int("indexados", indexed).Int("fallidos", failed).Msg("carga completada")
	return indexed, failed, nil
}

// LoadAll asegura el esquema una vez y carga cada entidad presente en el
// dataset, omitiendo las que no traen filas. Un fallo de carga en una entidad
// se registra y no detiene a las hermanas.
func (ix *Indexer) LoadAll(ctx context.Context, ds entity.Dataset) error {
	ix.EnsureSchema(ctx)

	for _, typ := range entity.All {
		rs, ok := ds[typ.Index]
		if !ok || rs.Len() == 0 {
			ix.log.Debug().Str("index", typ.Index).Msg("sin filas, se omite")
			continue
		}
		if _, _, err := ix.Load(ctx, typ, rs); err != nil {
			ix.log.Error().Err(err).Str("index", typ.Index).Msg("carga fallida; se continúa con las demás entidades")
		}
	}
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// transformRow prepara una fila para indexar: los nulos se conservan como
// null explícito, los time.Time se serializan a RFC3339 y se estampa
// indexed_at con la hora de carga.
func transformRow(row entity.Row, now time.Time) map[string]any {
	doc := make(map[string]any, len(row)+1)
	for k, v := range row {
		switch t := v.(type) {
		case time.Time:
			doc[k] = t.Format(time.RFC3339)
		default:
			doc[k] = v
		}
	}
	doc["indexed_at"] = now.Format(time.RFC3339)
	return doc
}

// docID identidad del documento: la forma string del campo clave cuando viene
// con valor; vacío deja que el almacén asigne el id (los duplicados entonces
// se acumulan en vez de sobrescribirse).
func docID(typ entity.Type, doc map[string]any) string {
	v, ok := doc[typ.KeyField]
	if !ok || v == nil {
		return ""
	}
	var s string
	switch n := v.(type) {
	case float64:
		// Sin notación exponencial: un número de factura grande debe dar
		// "1000000", no "1e+06".
		s = strconv.FormatFloat(n, 'f', -1, 64)
	default:
		s = fmt.Sprint(v)
	}
	if s == "" {
		return ""
	}
	return s
}

// buildBulkBody arma el NDJSON de un lote: línea de acción + línea de documento.
func buildBulkBody(typ entity.Type, docs []map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	for _, doc := range docs {
		meta := map[string]map[string]string{"index": {}}
		if id := docID(typ, doc); id != "" {
			meta["index"]["_id"] = id
		}
		metaLine, err := json.Marshal(meta)
		if err != nil {
			return nil, err
		}
		docLine, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		buf.Write(metaLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// bulkResponse subconjunto relevante de la respuesta del endpoint _bulk.
type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string          `json:"_id"`
		Status int             `json:"status"`
		Error  json.RawMessage `json:"error"`
	} `json:"items"`
}

// parseBulkResponse cuenta documentos exitosos y fallidos y devuelve una
// muestra de los errores.
func parseBulkResponse(body io.Reader) (ok, failed int, samples []string, err error) {
	var br bulkResponse
	if err := json.NewDecoder(body).Decode(&br); err != nil {
		return 0, 0, nil, err
	}
	for _, item := range br.Items {
		for _, r := range item {
			if r.Status >= http.StatusOK && r.Status < http.StatusMultipleChoices {
				ok++
				continue
			}
			failed++
			if len(samples) < failureSampleSize {
				samples = append(samples, fmt.Sprintf("id=%s status=%d error=%s", r.ID, r.Status, string(r.Error)))
			}
		}
	}
	return ok, failed, samples, nil
}

// ── Operaciones de índice ─────────────────────────────────────────────────────

func (ix *Indexer) indexExists(ctx context.Context, index string) (bool, error) {
	res, err := ix.es.Indices.Exists([]string{index}, ix.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, err
	}
	defer res.Body.Close()
	return res.StatusCode == http.StatusOK, nil
}

func (ix *Indexer) createIndex(ctx context.Context, typ entity.Type) error {
	body, err := json.Marshal(mappingBody(typ))
	if err != nil {
		return err
	}
	res, err := ix.es.Indices.Create(typ.Index,
		ix.es.Indices.Create.WithContext(ctx),
		ix.es.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("crear índice %s: %s", typ.Index, res.String())
	}
	return nil
}

func (ix *Indexer) deleteIndex(ctx context.Context, index string) error {
	res, err := ix.es.Indices.Delete([]string{index},
		ix.es.Indices.Delete.WithContext(ctx),
		ix.es.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("borrar índice %s: %s", index, res.String())
	}
	return nil
}

// mappingBody cuerpo de creación de índice con el mapeo fijo de la entidad.
func mappingBody(typ entity.Type) map[string]any {
	props := make(map[string]any, len(typ.Mapping))
	for field, kind := range typ.Mapping {
		props[field] = map[string]string{"type": kind}
	}
	return map[string]any{
		"mappings": map[string]any{"properties": props},
	}
}
