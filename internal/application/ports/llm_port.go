package ports

import "context"

// CompletionRequest una invocación de completado de chat: prompt de sistema,
// prompt de usuario, temperatura de muestreo y presupuesto de tokens.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// LLMService define el puerto de salida hacia el oráculo de lenguaje.
// Cualquier adaptador (OpenAI, Anthropic, mock) debe implementar esta interfaz.
// Siguiendo el principio de inversión de dependencias (DIP), la capa de
// aplicación solo conoce este contrato, no la implementación concreta.
type LLMService interface {
	// Complete envía la petición y devuelve el texto crudo del modelo.
	// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Provider nombre del proveedor activo, reportado por /api/health.
	Provider() string
}
