package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhoicas/finanzas-ai/internal/application/dto"
	"github.com/jhoicas/finanzas-ai/internal/application/ports"
)

const (
	answerSystem      = "Eres un analista financiero profesional con experiencia en análisis de datos y pronósticos."
	answerTemperature = 0.7
	answerMaxTokens   = 4000

	forecastSystem      = "Eres un experto en pronósticos financieros especializado en análisis de series temporales y modelado predictivo."
	forecastTemperature = 0.5
	forecastMaxTokens   = 4000

	// maxHitsForAI tope de documentos incluidos en el contexto del modelo.
	maxHitsForAI = 20
)

const answerPrompt = `Eres un asistente analista financiero. Basándote en los siguientes datos financieros recuperados del sistema contable de la empresa, responde la pregunta del usuario.

Pregunta del usuario: %s

Datos financieros recuperados:
%s

Proporciona una respuesta completa que:
1. Responda directamente la pregunta
2. Incluya cifras y métricas concretas
3. Aporte análisis y conclusiones
4. Si se piden pronósticos, use los patrones históricos para hacer predicciones razonables
5. Mencione supuestos o limitaciones

Responde en un tono profesional pero cercano.`

const forecastPrompt = `Eres un experto en pronósticos financieros. Basándote en los datos históricos siguientes, pronostica %s para los próximos %d meses.

Datos históricos:
%s

Proporciona:
1. Pronóstico mensual para los próximos %d meses
2. Metodología empleada (análisis de tendencia, estacionalidad, etc.)
3. Intervalos o rangos de confianza
4. Supuestos clave
5. Factores de riesgo a considerar

Presenta el pronóstico en un formato claro y estructurado con cifras concretas.`

// Composer redacta respuestas en prosa a partir de resultados de consulta.
type Composer struct {
	llm ports.LLMService
}

func NewComposer(llm ports.LLMService) *Composer {
	return &Composer{llm: llm}
}

// FormatResults serializa el resultado en texto legible por el modelo:
// agregaciones primero, después los primeros documentos.
func FormatResults(res *dto.SearchResult) string {
	var sections []string

	if len(res.Aggregations) > 0 {
		pretty, _ := json.MarshalIndent(res.Aggregations, "", "  ")
		sections = append(sections, "Resultados de agregaciones:", string(pretty))
	}

	if res.Total > 0 && len(res.Hits) > 0 {
		sections = append(sections, fmt.Sprintf("\nDocumentos encontrados (%d en total):", res.Total))
		hits := res.Hits
		if len(hits) > maxHitsForAI {
			hits = hits[:maxHitsForAI]
		}
		for _, hit := range hits {
			pretty, _ := json.MarshalIndent(hit, "", "  ")
			sections = append(sections, string(pretty))
		}
	}

	return strings.Join(sections, "\n")
}

// ComposeAnswer genera la respuesta final en prosa para el usuario.
func (c *Composer) ComposeAnswer(ctx context.Context, question, formattedResults string) (string, error) {
	answer, err := c.llm.Complete(ctx, ports.CompletionRequest{
		System:      answerSystem,
		Prompt:      fmt.Sprintf(answerPrompt, question, formattedResults),
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("redactar respuesta: %w", err)
	}
	return answer, nil
}

// ComposeForecast genera un pronóstico en prosa a partir de la serie
// histórica formateada.
func (c *Composer) ComposeForecast(ctx context.Context, metric string, periods int, formattedResults string) (string, error) {
	forecast, err := c.llm.Complete(ctx, ports.CompletionRequest{
		System:      forecastSystem,
		Prompt:      fmt.Sprintf(forecastPrompt, metric, periods, formattedResults, periods),
		Temperature: forecastTemperature,
		MaxTokens:   forecastMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("redactar pronóstico: %w", err)
	}
	return forecast, nil
}
