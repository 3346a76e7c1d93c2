package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/finanzas-ai/internal/application/dto"
	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

// migrateConfirmation palabra exacta que autoriza la migración destructiva.
const migrateConfirmation = "YES"

// Migrator recrea los índices del almacén con el mapeo vigente.
type Migrator interface {
	Migrate(ctx context.Context) []dto.MigrationResult
}

// AdminHandler maneja las operaciones administrativas del almacén.
type AdminHandler struct {
	migrator Migrator
	log      *logger.Logger
}

// NewAdminHandler construye el handler.
func NewAdminHandler(migrator Migrator, log *logger.Logger) *AdminHandler {
	return &AdminHandler{migrator: migrator, log: log.Component("admin_handler")}
}

// Migrate godoc
// @Summary      Recrear los índices del almacén
// @Description  Borra y recrea cada índice con su mapeo vigente. Destruye
//               todos los documentos: requiere confirm="YES" literal en el
//               cuerpo. Tras migrar hay que relanzar el ETL.
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MigrateRequest  true  "confirm debe ser exactamente YES"
// @Success      200   {array}   dto.MigrationResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/admin/migrate [post]
func (h *AdminHandler) Migrate(c *fiber.Ctx) error {
	var req dto.MigrateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "cuerpo de la petición inválido"})
	}
	if req.Confirm != migrateConfirmation {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: `la migración borra todos los datos; envía {"confirm": "YES"} para continuar`,
		})
	}

	h.log.Warn().Msg("migración de índices disparada vía API")
	return c.JSON(h.migrator.Migrate(c.Context()))
}
