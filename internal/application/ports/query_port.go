package ports

import (
	"context"

	"github.com/jhoicas/finanzas-ai/internal/application/dto"
)

// QueryExecutor define el puerto de salida hacia el almacén de búsqueda para
// la ruta de preguntas. La implementación concreta vive en infrastructure/elastic.
type QueryExecutor interface {
	// Execute corre la especificación contra el almacén. El ejecutor aplica
	// los defaults (índices, match_all) y el tope de documentos.
	Execute(ctx context.Context, spec dto.QuerySpec) (*dto.SearchResult, error)
}
