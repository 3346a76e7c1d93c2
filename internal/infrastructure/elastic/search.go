package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"github.com/jhoicas/finanzas-ai/internal/application/dto"
	"github.com/jhoicas/finanzas-ai/internal/application/ports"
	"github.com/jhoicas/finanzas-ai/internal/domain"
	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

// Verificar en tiempo de compilación que Searcher implementa QueryExecutor.
var _ ports.QueryExecutor = (*Searcher)(nil)

const (
	// maxDocs tope de documentos devueltos cuando no hay agregaciones.
	maxDocs = 100
	// defaultIndex colección por defecto si el modelo no nombra ninguna.
	defaultIndex = "invoices"
)

// Searcher ejecuta especificaciones de consulta traducidas contra el almacén.
type Searcher struct {
	es  *elasticsearch.Client
	log *logger.Logger
}

// NewSearcher construye el ejecutor.
func NewSearcher(es *elasticsearch.Client, log *logger.Logger) *Searcher {
	return &Searcher{es: es, log: log.Component("searcher")}
}

// Execute implementa ports.QueryExecutor. Aplica defaults (índice invoices,
// match_all), limita documentos a maxDocs y suprime documentos cuando solo se
// piden agregaciones. El rechazo del almacén (campo desconocido, DSL
// inválido) se reporta como ErrQuery: es el modo de fallo dominante porque la
// especificación viene de un oráculo sin garantía de esquema.
func (s *Searcher) Execute(ctx context.Context, spec dto.QuerySpec) (*dto.SearchResult, error) {
	indices, body := buildSearchBody(spec)

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("elastic: serializar consulta: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(indices...),
		s.es.Search.WithBody(bytes.NewReader(raw)),
	)
	if err != nil {
		return nil, fmt.Errorf("elastic: búsqueda fallida: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
		if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("elastic: %s: %s: %w", res.Status(), detail, domain.ErrAuth)
		}
		return nil, fmt.Errorf("elastic: %s: %s: %w", res.Status(), detail, domain.ErrQuery)
	}

	result, err := parseSearchResponse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("elastic: respuesta de búsqueda: %w", err)
	}

	s.log.Info().Strs("indices", indices).Int("total", result.Total).Msg("consulta ejecutada")
	return result, nil
}

// buildSearchBody materializa los defaults de la especificación y el régimen
// de tamaño: solo-agregaciones pide cero documentos.
func buildSearchBody(spec dto.QuerySpec) (indices []string, body map[string]any) {
	indices = spec.Indices
	if len(indices) == 0 {
		indices = []string{defaultIndex}
	}

	query := spec.Query
	if len(query) == 0 {
		query = map[string]any{"match_all": map[string]any{}}
	}

	body = map[string]any{"query": query}
	if spec.AggsOnly() {
		body["aggs"] = spec.Aggs
		body["size"] = 0
	} else {
		body["size"] = maxDocs
	}
	return indices, body
}

// searchEnvelope subconjunto relevante de la respuesta de _search.
type searchEnvelope struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]any `json:"aggregations"`
}

func parseSearchResponse(body io.Reader) (*dto.SearchResult, error) {
	var env searchEnvelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		return nil, err
	}
	result := &dto.SearchResult{
		Total:        env.Hits.Total.Value,
		Aggregations: env.Aggregations,
	}
	for _, h := range env.Hits.Hits {
		result.Hits = append(result.Hits, h.Source)
	}
	return result, nil
}
