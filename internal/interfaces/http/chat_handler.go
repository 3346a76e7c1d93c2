package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/finanzas-ai/internal/application/dto"
	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

// Answerer responde preguntas en lenguaje natural sobre los datos financieros.
type Answerer interface {
	AnswerQuestion(ctx context.Context, question string) string
}

// ChatHandler maneja el endpoint de preguntas del asistente.
type ChatHandler struct {
	assistant Answerer
	log       *logger.Logger
}

// NewChatHandler construye el handler.
func NewChatHandler(assistant Answerer, log *logger.Logger) *ChatHandler {
	return &ChatHandler{assistant: assistant, log: log.Component("chat_handler")}
}

// Ask godoc
// @Summary      Preguntar al asistente financiero
// @Description  Traduce la pregunta a una consulta sobre los datos contables
//               indexados y redacta la respuesta en prosa. Los fallos internos
//               del ciclo se devuelven como texto de disculpa, no como error HTTP.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AskRequest  true  "question (obligatorio)"
// @Success      200   {object}  dto.AskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ask [post]
func (h *ChatHandler) Ask(c *fiber.Ctx) error {
	var req dto.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "cuerpo de la petición inválido"})
	}
	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "falta la pregunta"})
	}

	h.log.Info().Str("pregunta", req.Question).Msg("pregunta recibida")
	answer := h.assistant.AnswerQuestion(c.Context(), req.Question)
	return c.JSON(dto.AskResponse{Answer: answer})
}
