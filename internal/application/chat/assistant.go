package chat

import (
	"context"
	"fmt"

	"github.com/jhoicas/finanzas-ai/internal/application/dto"
	"github.com/jhoicas/finanzas-ai/internal/application/ports"
	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

// Assistant orquesta el ciclo pregunta → consulta → datos → respuesta.
type Assistant struct {
	translator *Translator
	composer   *Composer
	executor   ports.QueryExecutor
	log        *logger.Logger
}

func NewAssistant(llm ports.LLMService, executor ports.QueryExecutor, log *logger.Logger) *Assistant {
	return &Assistant{
		translator: NewTranslator(llm, log),
		composer:   NewComposer(llm),
		executor:   executor,
		log:        log.Component("assistant"),
	}
}

// AnswerQuestion responde una pregunta en lenguaje natural. Nunca devuelve
// error: cualquier fallo del ciclo (traducción, consulta, redacción) se
// convierte en una disculpa legible que incluye el detalle, para que el canal
// de chat siempre tenga algo que mostrar.
func (a *Assistant) AnswerQuestion(ctx context.Context, question string) string {
	a.log.Info().Str("pregunta", question).Msg("procesando pregunta")

	answer, err := a.answer(ctx, question)
	if err != nil {
		a.log.Error().Err(err).Msg("fallo procesando la pregunta")
		return fmt.Sprintf("Encontré un error procesando tu pregunta: %v. Intenta reformularla o verifica que los datos estén disponibles en el sistema.", err)
	}

	a.log.Info().Msg("respuesta generada")
	return answer
}

func (a *Assistant) answer(ctx context.Context, question string) (string, error) {
	spec, err := a.translator.Translate(ctx, question)
	if err != nil {
		return "", err
	}

	results, err := a.executor.Execute(ctx, spec)
	if err != nil {
		return "", err
	}

	return a.composer.ComposeAnswer(ctx, question, FormatResults(results))
}

// Forecast pronostica una métrica financiera sobre una ventana histórica fija
// de dos años agregada por mes.
func (a *Assistant) Forecast(ctx context.Context, metric string, periods int) (string, error) {
	spec := dto.QuerySpec{
		Indices: []string{"invoices", "purchases"},
		Query: map[string]any{
			"range": map[string]any{
				"transactiondate": map[string]any{"gte": "now-2y"},
			},
		},
		Aggs: map[string]any{
			"monthly_revenue": map[string]any{
				"date_histogram": map[string]any{
					"field":             "transactiondate",
					"calendar_interval": "month",
				},
				"aggs": map[string]any{
					"total_amount": map[string]any{
						"sum": map[string]any{"field": "totalamount"},
					},
				},
			},
		},
	}

	results, err := a.executor.Execute(ctx, spec)
	if err != nil {
		return "", fmt.Errorf("consultar histórico: %w", err)
	}

	return a.composer.ComposeForecast(ctx, metric, periods, FormatResults(results))
}
