package etl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

// Scheduler dispara el pipeline una vez al día a la hora configurada.
type Scheduler struct {
	pipeline *Pipeline
	cron     *cron.Cron
	log      *logger.Logger
}

func NewScheduler(pipeline *Pipeline, log *logger.Logger) *Scheduler {
	return &Scheduler{
		pipeline: pipeline,
		cron:     cron.New(),
		log:      log.Component("scheduler"),
	}
}

// Start programa la ejecución diaria. at viene en formato HH:MM (reloj local).
func (s *Scheduler) Start(at string) error {
	expr, err := cronExpr(at)
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc(expr, func() {
		s.log.Info().Msg("disparo programado del pipeline")
		s.pipeline.Run(context.Background(), "")
	})
	if err != nil {
		return fmt.Errorf("programar pipeline: %w", err)
	}

	s.cron.Start()
	s.log.Info().Str("hora", at).Msg("pipeline programado")
	return nil
}

// Stop detiene el planificador y espera a que termine el trabajo en curso.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// cronExpr convierte HH:MM en una expresión cron diaria.
func cronExpr(at string) (string, error) {
	parts := strings.Split(at, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("hora inválida %q: se espera HH:MM", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("hora inválida %q: se espera HH:MM", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("hora inválida %q: se espera HH:MM", at)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
