package elastic

import (
	"context"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"github.com/jhoicas/finanzas-ai/internal/application/dto"
	"github.com/jhoicas/finanzas-ai/internal/domain/entity"
	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

// Migrator operación administrativa: borra y recrea las colecciones con el
// mapeo declarado. Destruye todos los documentos; los callers deben exigir
// confirmación explícita antes de invocarlo.
type Migrator struct {
	es      *elasticsearch.Client
	indexer *Indexer
	log     *logger.Logger
}

// NewMigrator construye el migrador.
func NewMigrator(es *elasticsearch.Client, log *logger.Logger) *Migrator {
	return &Migrator{
		es:      es,
		indexer: NewIndexer(es, log),
		log:     log.Component("migrator"),
	}
}

// Migrate borra cada colección existente y la recrea con el mapeo fijo.
// El desenlace se reporta por colección; el fallo en una no detiene a las demás.
func (m *Migrator) Migrate(ctx context.Context) []dto.MigrationResult {
	results := make([]dto.MigrationResult, 0, len(entity.All))

	for _, typ := range entity.All {
		r := dto.MigrationResult{Index: typ.Index}

		exists, err := m.indexer.indexExists(ctx, typ.Index)
		if err != nil {
			r.Error = err.Error()
			results = append(results, r)
			m.log.Error().Err(err).Str("index", typ.Index).Msg("verificar colección")
			continue
		}

		if exists {
			if err := m.indexer.deleteIndex(ctx, typ.Index); err != nil {
				r.Error = err.Error()
				results = append(results, r)
				m.log.Error().Err(err).Str("index", typ.Index).Msg("borrar colección")
				continue
			}
			r.Dropped = true
			m.log.Info().Str("index", typ.Index).Msg("colección borrada")
		}

		if err := m.indexer.createIndex(ctx, typ); err != nil {
			r.Error = err.Error()
			results = append(results, r)
			m.log.Error().Err(err).Str("index", typ.Index).Msg("recrear colección")
			continue
		}
		r.Created = true
		m.log.Info().Str("index", typ.Index).Msg("colección creada con mapeo nuevo")
		results = append(results, r)
	}

	return results
}
