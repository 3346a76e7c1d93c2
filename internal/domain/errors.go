package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Cada adaptador envuelve estos sentinelas con fmt.Errorf("...: %w", ...) y los
// callers los distinguen con errors.Is.
var (
	// ErrAuth credenciales rechazadas por la fuente contable o el almacén.
	ErrAuth = errors.New("credenciales inválidas")
	// ErrAPI respuesta de error de la aplicación remota o status HTTP no exitoso.
	ErrAPI = errors.New("error de la API externa")
	// ErrParse cuerpo XML mal formado o JSON del modelo ilegible.
	ErrParse = errors.New("respuesta mal formada")
	// ErrQuery el almacén rechazó la consulta traducida (campo desconocido, DSL inválido).
	ErrQuery = errors.New("consulta rechazada por el almacén")
	// ErrTranslation la salida del modelo no es la estructura JSON esperada.
	ErrTranslation = errors.New("la traducción del modelo no es JSON válido")
)
