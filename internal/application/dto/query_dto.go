package dto

// QuerySpec especificación estructurada que el modelo produce a partir de una
// pregunta: colecciones objetivo, filtro DSL y agregaciones opcionales.
type QuerySpec struct {
	Indices []string       `json:"indices"`
	Query   map[string]any `json:"query"`
	Aggs    map[string]any `json:"aggs,omitempty"`
}

// AggsOnly indica que solo se piden agregaciones (size 0, sin documentos).
func (s QuerySpec) AggsOnly() bool {
	return len(s.Aggs) > 0
}

// SearchResult resultado de ejecutar una QuerySpec contra el almacén.
type SearchResult struct {
	// Total documentos que coinciden (hits.total.value).
	Total int
	// Hits _source de los documentos devueltos (acotados por el ejecutor).
	Hits []map[string]any
	// Aggregations salida de agregaciones, vacío si no se pidieron.
	Aggregations map[string]any
}
