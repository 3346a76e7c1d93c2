// Package elastic implementa el adaptador al almacén de búsqueda y
// agregación: carga de colecciones, ejecución de consultas traducidas,
// migración de esquemas y verificación de datos.
package elastic

import (
	"context"
	"fmt"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"github.com/jhoicas/finanzas-ai/pkg/config"
	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

// NewClient abre la conexión al almacén y la verifica con un ping.
// Prioridad de conexión: Endpoint+APIKey (serverless) > CloudID+APIKey (cloud)
// > host:port local. El cliente resultante es de larga vida y seguro para
// reuso en llamadas secuenciales.
func NewClient(ctx context.Context, cfg config.ElasticConfig, log *logger.Logger) (*elasticsearch.Client, error) {
	var esCfg elasticsearch.Config

	switch {
	case cfg.Endpoint != "" && cfg.APIKey != "":
		log.Info().Str("endpoint", cfg.Endpoint).Msg("conectando a Elastic serverless")
		esCfg = elasticsearch.Config{
			Addresses: []string{cfg.Endpoint},
			APIKey:    cfg.APIKey,
		}
	case cfg.CloudID != "" && cfg.APIKey != "":
		log.Info().Msg("conectando a Elastic Cloud")
		esCfg = elasticsearch.Config{
			CloudID: cfg.CloudID,
			APIKey:  cfg.APIKey,
		}
	default:
		addr := fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
		log.Info().Str("addr", addr).Msg("conectando a Elasticsearch local")
		esCfg = elasticsearch.Config{
			Addresses: []string{addr},
		}
	}

	// Reintentos acotados sobre fallos transitorios; el timeout por llamada
	// lo gobierna el contexto del caller.
	esCfg.MaxRetries = 3
	esCfg.RetryOnStatus = []int{429, 502, 503, 504}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elastic: crear cliente: %w", err)
	}

	res, err := es.Ping(es.Ping.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elastic: ping fallido: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elastic: ping rechazado: %s", res.Status())
	}

	log.Info().Msg("conexión al almacén verificada")
	return es, nil
}
