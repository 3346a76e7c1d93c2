package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/finanzas-ai/internal/application/dto"
	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

// PipelineRunner ejecuta el ciclo de extracción y carga.
type PipelineRunner interface {
	Run(ctx context.Context, since string) bool
	Running() bool
}

// ETLHandler maneja el disparo manual del pipeline.
type ETLHandler struct {
	pipeline PipelineRunner
	log      *logger.Logger
}

// NewETLHandler construye el handler.
func NewETLHandler(pipeline PipelineRunner, log *logger.Logger) *ETLHandler {
	return &ETLHandler{pipeline: pipeline, log: log.Component("etl_handler")}
}

// Run godoc
// @Summary      Disparar el pipeline ETL
// @Description  Extrae los registros contables desde el origen y los carga en
//               el almacén de búsqueda. Síncrono: responde al terminar. Si ya
//               hay una ejecución en curso devuelve 409 sin encolar otra.
// @Tags         etl
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ETLRequest  false  "from_date opcional (DD.MM.AAAA)"
// @Success      200   {object}  dto.StatusResponse
// @Failure      409   {object}  dto.StatusResponse
// @Failure      500   {object}  dto.StatusResponse
// @Router       /api/etl [post]
func (h *ETLHandler) Run(c *fiber.Ctx) error {
	var req dto.ETLRequest
	// El cuerpo es opcional: sin JSON se usa la ventana por defecto.
	_ = c.BodyParser(&req)

	if h.pipeline.Running() {
		return c.Status(fiber.StatusConflict).JSON(dto.StatusResponse{
			Status: "error", Message: "ya hay una ejecución del pipeline en curso",
		})
	}

	h.log.Info().Str("desde", req.FromDate).Msg("pipeline disparado vía API")
	if !h.pipeline.Run(c.Context(), req.FromDate) {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.StatusResponse{
			Status: "error", Message: "el pipeline ETL falló",
		})
	}

	return c.JSON(dto.StatusResponse{
		Status: "success", Message: "pipeline ETL completado correctamente",
	})
}
