package dto

// AskRequest cuerpo de POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse respuesta del asistente.
type AskResponse struct {
	Answer string `json:"answer"`
}

// ETLRequest cuerpo de POST /api/etl. FromDate en formato DD.MM.YYYY;
// vacío usa la ventana por defecto (últimos 10 años).
type ETLRequest struct {
	FromDate string `json:"from_date"`
}

// StatusResponse estado de una operación disparada vía API.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse respuesta del liveness probe.
type HealthResponse struct {
	Status     string `json:"status"`
	AIProvider string `json:"ai_provider"`
}

// LoginRequest credencial del operador administrativo.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse token emitido.
type LoginResponse struct {
	Token string `json:"token"`
}

// MigrateRequest confirmación explícita para la migración destructiva.
type MigrateRequest struct {
	Confirm string `json:"confirm"`
}

// MigrationResult desenlace por colección de una migración.
type MigrationResult struct {
	Index   string `json:"index"`
	Dropped bool   `json:"dropped"`
	Created bool   `json:"created"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Error string `json:"error"`
}
