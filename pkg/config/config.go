package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	Directo   DirectoConfig
	Elastic   ElasticConfig
	AI        AIConfig
	HTTP      HTTPConfig
	JWT       JWTConfig
	Scheduler SchedulerConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// DirectoConfig acceso a la API XML de Directo.
type DirectoConfig struct {
	// BaseURL endpoint xmlcore de la cuenta. El token va como campo del formulario, no en la URL.
	BaseURL string
	Token   string
}

// ElasticConfig conexión al almacén de búsqueda.
// Prioridad: Endpoint+APIKey (serverless) > CloudID+APIKey (cloud) > Host:Port (local).
type ElasticConfig struct {
	Endpoint string
	CloudID  string
	APIKey   string
	Host     string
	Port     int
}

// AIConfig selección y credenciales del proveedor LLM.
type AIConfig struct {
	Provider       string // "openai" | "anthropic"
	OpenAIKey      string
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig protege la superficie administrativa (/api/etl, /api/admin).
// Con Secret vacío los endpoints quedan abiertos (modo local).
type JWTConfig struct {
	Secret            string
	Issuer            string
	Expiration        int // minutos
	AdminPasswordHash string
}

// SchedulerConfig corrida diaria del pipeline ETL.
type SchedulerConfig struct {
	// At hora local HH:MM. Vacío desactiva el scheduler.
	At string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo .env).
// Las env vars tienen prioridad. Nombres esperados: DIRECTO_TOKEN, ELASTIC_ENDPOINT, OPENAI_API_KEY, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración .env en el directorio de trabajo
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "finanzas-ai"),
		},
		Directo: DirectoConfig{
			BaseURL: getString(v, "DIRECTO_BASE_URL", "https://login.directo.ee/xmlcore/cap_bi/xmlcore.asp"),
			Token:   getString(v, "DIRECTO_TOKEN", ""),
		},
		Elastic: ElasticConfig{
			Endpoint: getString(v, "ELASTIC_ENDPOINT", ""),
			CloudID:  getString(v, "ELASTIC_CLOUD_ID", ""),
			APIKey:   getString(v, "ELASTIC_API_KEY", ""),
			Host:     getString(v, "ES_HOST", "localhost"),
			Port:     getInt(v, "ES_PORT", 9200),
		},
		AI: AIConfig{
			Provider:       strings.ToLower(getString(v, "AI_PROVIDER", "openai")),
			OpenAIKey:      getString(v, "OPENAI_API_KEY", ""),
			OpenAIModel:    getString(v, "OPENAI_MODEL", "gpt-4o"),
			AnthropicKey:   getString(v, "ANTHROPIC_API_KEY", ""),
			AnthropicModel: getString(v, "ANTHROPIC_MODEL", "claude-3-5-haiku-20241022"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 5000),
		},
		JWT: JWTConfig{
			Secret:            getString(v, "JWT_SECRET", ""),
			Issuer:            getString(v, "JWT_ISSUER", "finanzas-ai"),
			Expiration:        getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			AdminPasswordHash: getString(v, "ADMIN_PASSWORD_HASH", ""),
		},
		Scheduler: SchedulerConfig{
			At: getString(v, "ETL_SCHEDULE", ""),
		},
	}

	if cfg.AI.Provider != "openai" && cfg.AI.Provider != "anthropic" {
		return nil, fmt.Errorf("config: AI_PROVIDER desconocido %q (usar 'openai' o 'anthropic')", cfg.AI.Provider)
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		return v.GetInt(key)
	}
	return def
}
