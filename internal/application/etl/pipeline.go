package etl

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

// defaultLookbackDays ventana histórica por defecto de la primera carga,
// aproximadamente diez años.
const defaultLookbackDays = 3650

// Pipeline orquesta el ciclo extracción → carga. Una sola ejecución a la vez:
// si llega una petición mientras otra corre, se descarta en vez de encolarse.
type Pipeline struct {
	fetcher Fetcher
	loader  Loader
	log     *logger.Logger
	running atomic.Bool
	now     func() time.Time
}

func NewPipeline(fetcher Fetcher, loader Loader, log *logger.Logger) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		loader:  loader,
		log:     log.Component("pipeline"),
		now:     time.Now,
	}
}

// Running informa si hay una ejecución en curso.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// Run ejecuta el ciclo completo desde la fecha dada (DD.MM.AAAA; vacía usa la
// ventana por defecto). Devuelve false si otra ejecución estaba en curso o la
// carga falló. Los fallos de extracción por entidad no abortan el ciclo: las
// entidades restantes se cargan igual.
func (p *Pipeline) Run(ctx context.Context, since string) bool {
	if !p.running.CompareAndSwap(false, true) {
		p.log.Warn().Msg("ejecución descartada: otra ya está en curso")
		return false
	}
	defer p.running.Store(false)

	if since == "" {
		since = p.now().AddDate(0, 0, -defaultLookbackDays).Format("02.01.2006")
	}

	runID := uuid.NewString()
	log := p.log.With().Str("run_id", runID).Str("desde", since).Logger()
	start := p.now()
	log.Info().Msg("iniciando ciclo ETL")

	ds, failures := p.fetcher.FetchAll(ctx, since)
	if failures > 0 {
		log.Warn().Int("entidades_fallidas", failures).Msg("extracción parcial")
	}

	if err := p.loader.LoadAll(ctx, ds); err != nil {
		log.Error().Err(err).Msg("carga fallida")
		return false
	}

	log.Info().Dur("duracion", p.now().Sub(start)).Msg("ciclo ETL completado")
	return true
}
