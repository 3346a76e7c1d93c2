package http

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/finanzas-ai/internal/application/dto"
	"github.com/jhoicas/finanzas-ai/pkg/config"
	"github.com/jhoicas/finanzas-ai/pkg/jwt"
)

// AuthHandler emite tokens para la superficie administrativa. Hay un único
// operador: la credencial es la contraseña cuyo hash bcrypt vive en la
// configuración.
type AuthHandler struct {
	cfg config.JWTConfig
}

// NewAuthHandler construye el handler.
func NewAuthHandler(cfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// Login godoc
// @Summary      Obtener token administrativo
// @Description  Valida la contraseña del operador contra ADMIN_PASSWORD_HASH
//               y emite un Bearer Token para /api/etl y /api/admin.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "password (obligatorio)"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	if h.cfg.Secret == "" || h.cfg.AdminPasswordHash == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: "la autenticación no está configurada",
		})
	}

	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "cuerpo de la petición inválido"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminPasswordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "contraseña incorrecta"})
	}

	token, err := jwt.Generate(h.cfg.Secret, "admin", h.cfg.Issuer, h.cfg.Expiration)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "no se pudo emitir el token"})
	}

	return c.JSON(dto.LoginResponse{Token: token})
}
