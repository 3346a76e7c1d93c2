package etl

import (
	"context"

	"github.com/jhoicas/finanzas-ai/internal/domain/entity"
)

// Fetcher extrae los registros contables desde el origen externo.
type Fetcher interface {
	// FetchAll devuelve un rowset por entidad y cuántas entidades fallaron.
	FetchAll(ctx context.Context, since string) (entity.Dataset, int)
}

// Loader persiste un dataset completo en el almacén de búsqueda.
type Loader interface {
	LoadAll(ctx context.Context, ds entity.Dataset) error
}
