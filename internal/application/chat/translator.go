package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/finanzas-ai/internal/application/dto"
	"github.com/jhoicas/finanzas-ai/internal/application/ports"
	"github.com/jhoicas/finanzas-ai/internal/domain"
	"github.com/jhoicas/finanzas-ai/pkg/jsonx"
	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

const translateSystem = "Eres un analista de datos experto en consultas de Elasticsearch. Responde siempre únicamente con JSON válido."

// translatePrompt enumera el esquema real de las colecciones indexadas. El
// modelo solo puede referirse a campos de esta lista; cualquier otro campo
// hará fallar la consulta en el ejecutor.
const translatePrompt = `Eres un analista de datos financieros. Convierte esta pregunta en lenguaje natural en una consulta de Elasticsearch.

Índices disponibles y sus campos:
- invoices: number, date, duedate, transactiondate, vatzone, paymentterm, country, currency, currencyrate, customercode, customername, comment, address1, address2, address3, salesman, confirmed, netamount, vat, balance, totalamount, ts
- purchases: number, date, duedate, sum, supplierinvoiceno, paymentterm, supplier, suppliername, transactiontime, vat, asset, confirmed, ts
- items: code, name, class, class_name, unit, salesprice, vatprice, vatprice1, vatprice2, vatprice3, vatprice4, cost, closed, ts, tscreated
- projects: code, name, manager, start, end, master, type, country, closed, points, createdts, ts
- customers: code, name, class, regno, type, salesman, country, email, address1, address2, ts, ts_created
- objects: code, name, type, level, ts

Pregunta del usuario: %s

Genera una consulta Elasticsearch DSL en formato JSON. Incluye:
1. El índice o índices a consultar
2. Filtros para criterios concretos (país, vendedor, proyecto, etc.)
3. Agregaciones si la pregunta pide sumas, promedios o agrupaciones
4. Rangos de fechas si se mencionan (usa transactiondate en invoices y date en purchases)

Devuelve SOLO JSON válido con esta estructura:
{
    "indices": ["nombre_indice"],
    "query": { ... },
    "aggs": { ... } (opcional)
}`

const (
	translateTemperature = 0.1
	translateMaxTokens   = 2000
)

// Translator convierte preguntas en lenguaje natural en especificaciones de
// consulta estructuradas usando el proveedor de IA configurado.
type Translator struct {
	llm ports.LLMService
	log *logger.Logger
}

func NewTranslator(llm ports.LLMService, log *logger.Logger) *Translator {
	return &Translator{llm: llm, log: log.Component("translator")}
}

// Translate pide al modelo la consulta y la parsea. Una temperatura baja
// favorece salidas deterministas; aun así el modelo puede envolver el JSON en
// vallas de código o prosa, de ahí el paso de extracción.
func (t *Translator) Translate(ctx context.Context, question string) (dto.QuerySpec, error) {
	raw, err := t.llm.Complete(ctx, ports.CompletionRequest{
		System:      translateSystem,
		Prompt:      fmt.Sprintf(translatePrompt, question),
		Temperature: translateTemperature,
		MaxTokens:   translateMaxTokens,
	})
	if err != nil {
		return dto.QuerySpec{}, fmt.Errorf("traducir pregunta: %w", err)
	}

	payload := jsonx.ExtractObject(raw)
	if payload == "" {
		t.log.Error().Str("respuesta", raw).Msg("el modelo no devolvió un objeto JSON")
		return dto.QuerySpec{}, fmt.Errorf("respuesta sin JSON: %w", domain.ErrTranslation)
	}

	var spec dto.QuerySpec
	if err := json.Unmarshal([]byte(payload), &spec); err != nil {
		t.log.Error().Err(err).Str("respuesta", raw).Msg("JSON del modelo inválido")
		return dto.QuerySpec{}, fmt.Errorf("parsear consulta generada: %v: %w", err, domain.ErrTranslation)
	}

	t.log.Info().Strs("indices", spec.Indices).Bool("aggs", len(spec.Aggs) > 0).Msg("consulta generada")
	return spec, nil
}
