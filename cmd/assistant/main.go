// Comando assistant: interfaz de línea de comandos del asistente financiero.
// Agrupa el pipeline ETL, el chat interactivo y las operaciones
// administrativas del almacén en subcomandos.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jhoicas/finanzas-ai/internal/application/chat"
	"github.com/jhoicas/finanzas-ai/internal/application/etl"
	"github.com/jhoicas/finanzas-ai/internal/application/ports"
	infraai "github.com/jhoicas/finanzas-ai/internal/infrastructure/ai"
	"github.com/jhoicas/finanzas-ai/internal/infrastructure/directo"
	infraelastic "github.com/jhoicas/finanzas-ai/internal/infrastructure/elastic"
	"github.com/jhoicas/finanzas-ai/pkg/config"
	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

// appContext dependencias compartidas por los subcomandos, construidas una
// sola vez en PersistentPreRunE.
type appContext struct {
	cfg       *config.Config
	log       *logger.Logger
	assistant *chat.Assistant
	pipeline  *etl.Pipeline
	migrator  *infraelastic.Migrator
	verifier  *infraelastic.Verifier
}

var app *appContext

var rootCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Asistente financiero IA sobre los datos contables de Directo",
	Long: `Asistente financiero con IA.

Extrae los registros contables desde la API XML de Directo, los indexa en
Elasticsearch y responde preguntas en lenguaje natural usando el proveedor
de IA configurado (OpenAI o Anthropic).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log := logger.New(logger.Config{Env: cfg.App.Env, Level: "warn"})

		es, err := infraelastic.NewClient(cmd.Context(), cfg.Elastic, log)
		if err != nil {
			return fmt.Errorf("conexión a Elasticsearch: %w", err)
		}

		var llm ports.LLMService
		switch cfg.AI.Provider {
		case "anthropic":
			llm = infraai.NewAnthropicService(cfg.AI.AnthropicKey, cfg.AI.AnthropicModel)
		default:
			llm = infraai.NewOpenAIService(cfg.AI.OpenAIKey, cfg.AI.OpenAIModel)
		}

		directoClient := directo.NewClient(cfg.Directo.BaseURL, cfg.Directo.Token, log)
		indexer := infraelastic.NewIndexer(es, log)

		app = &appContext{
			cfg:       cfg,
			log:       log,
			assistant: chat.NewAssistant(llm, infraelastic.NewSearcher(es, log), log),
			pipeline:  etl.NewPipeline(directoClient, indexer, log),
			migrator:  infraelastic.NewMigrator(es, log),
			verifier:  infraelastic.NewVerifier(es, log),
		}
		return nil
	},
}

var etlDesde string

var etlCmd = &cobra.Command{
	Use:   "etl",
	Short: "Ejecutar el pipeline de extracción y carga",
	Long: `Extrae todas las entidades desde Directo y las carga en el almacén.

Sin --desde se cargan los últimos 10 años. Con --desde (DD.MM.AAAA) solo los
registros modificados a partir de esa fecha.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Ejecutando pipeline ETL...")
		if !app.pipeline.Run(cmd.Context(), etlDesde) {
			return fmt.Errorf("el pipeline ETL falló")
		}
		fmt.Println("Pipeline ETL completado.")
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat interactivo con el asistente",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(strings.Repeat("=", 70))
		fmt.Println("Asistente Financiero IA - Modo interactivo")
		fmt.Println(strings.Repeat("=", 70))
		fmt.Println("\nPregúntame lo que quieras sobre los datos financieros de tu empresa.")
		fmt.Println("Ejemplos:")
		fmt.Println("  - ¿Cuánto vendimos en Países Bajos el trimestre pasado?")
		fmt.Println("  - ¿Qué vendedor tuvo las mayores ventas?")
		fmt.Println("  - Pronostica nuestros ingresos para los próximos 6 meses")
		fmt.Println("\nEscribe 'salir' para terminar.")

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("\nTu pregunta: ")
			if !scanner.Scan() {
				fmt.Println("\n¡Hasta luego!")
				return scanner.Err()
			}
			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				continue
			}
			switch strings.ToLower(question) {
			case "salir", "exit", "quit", "q":
				fmt.Println("¡Hasta luego!")
				return nil
			}

			fmt.Println("\nAnalizando... (puede tardar un momento)")
			answer := app.assistant.AnswerQuestion(cmd.Context(), question)
			fmt.Println("\n" + strings.Repeat("-", 70))
			fmt.Println(answer)
			fmt.Println(strings.Repeat("-", 70))
		}
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [pregunta]",
	Short: "Responder una única pregunta",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		fmt.Println("Analizando...")
		fmt.Println("\n" + app.assistant.AnswerQuestion(cmd.Context(), question))
		return nil
	},
}

var forecastPeriodos int

var forecastCmd = &cobra.Command{
	Use:   "forecast [métrica]",
	Short: "Pronosticar una métrica financiera",
	Long:  `Pronostica una métrica (por defecto los ingresos) a partir de los últimos dos años de datos indexados.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		metric := "los ingresos"
		if len(args) > 0 {
			metric = strings.Join(args, " ")
		}
		fmt.Printf("Pronosticando %s para los próximos %d meses...\n", metric, forecastPeriodos)

		forecast, err := app.assistant.Forecast(cmd.Context(), metric, forecastPeriodos)
		if err != nil {
			return err
		}
		fmt.Println("\n" + forecast)
		return nil
	},
}

var scheduleHora string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Ejecutar el ETL a diario a la hora indicada",
	RunE: func(cmd *cobra.Command, args []string) error {
		scheduler := etl.NewScheduler(app.pipeline, app.log)
		if err := scheduler.Start(scheduleHora); err != nil {
			return err
		}
		fmt.Printf("Pipeline ETL programado a diario a las %s. Ctrl+C para detener.\n", scheduleHora)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		scheduler.Stop()
		fmt.Println("\nPlanificador detenido.")
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Borrar y recrear los índices con el mapeo vigente",
	Long: `Borra cada índice y lo recrea con su mapeo vigente.

ATENCIÓN: destruye todos los documentos indexados. Tras migrar hay que
relanzar el ETL para repoblar el almacén.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Esta operación BORRA todos los datos indexados.")
		fmt.Print("Escribe YES para continuar: ")

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Scan()
		if strings.TrimSpace(scanner.Text()) != "YES" {
			fmt.Println("Migración cancelada.")
			return nil
		}

		for _, r := range app.migrator.Migrate(cmd.Context()) {
			if r.Error != "" {
				fmt.Printf("  ✗ %-12s %s\n", r.Index, r.Error)
				continue
			}
			fmt.Printf("  ✓ %-12s recreado\n", r.Index)
		}
		fmt.Println("\nMigración completada. Relanza el ETL para repoblar los índices.")
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Resumir qué datos hay indexados",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := app.verifier.Report(cmd.Context())
		if err != nil {
			return err
		}
		printReport(report)
		return nil
	},
}

func main() {
	rootCmd.AddCommand(etlCmd, chatCmd, askCmd, forecastCmd, scheduleCmd, migrateCmd, verifyCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	etlCmd.Flags().StringVar(&etlDesde, "desde", "", "fecha inicial DD.MM.AAAA (vacío: últimos 10 años)")
	forecastCmd.Flags().IntVar(&forecastPeriodos, "periodos", 6, "meses a pronosticar")
	scheduleCmd.Flags().StringVar(&scheduleHora, "hora", "02:00", "hora diaria HH:MM")
}
