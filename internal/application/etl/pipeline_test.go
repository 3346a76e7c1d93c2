package etl

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/finanzas-ai/internal/domain/entity"
	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

type fakeFetcher struct {
	ds       entity.Dataset
	failures int
	since    []string
	block    chan struct{} // si no es nil, FetchAll espera aquí
}

func (f *fakeFetcher) FetchAll(_ context.Context, since string) (entity.Dataset, int) {
	f.since = append(f.since, since)
	if f.block != nil {
		<-f.block
	}
	return f.ds, f.failures
}

type fakeLoader struct {
	mu     sync.Mutex
	loaded []entity.Dataset
	err    error
}

func (f *fakeLoader) LoadAll(_ context.Context, ds entity.Dataset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = append(f.loaded, ds)
	return f.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func TestRun_ExtraccionParcialCargaIgual(t *testing.T) {
	// invoices falló al extraerse; customers trae tres filas. El ciclo debe
	// completarse y cargar lo que sí llegó.
	fetcher := &fakeFetcher{
		ds: entity.Dataset{
			"customers": entity.NewRowset([]entity.Row{
				{"code": "C1"}, {"code": "C2"}, {"code": "C3"},
			}),
		},
		failures: 1,
	}
	loader := &fakeLoader{}

	p := NewPipeline(fetcher, loader, testLogger())
	ok := p.Run(context.Background(), "01.01.2020")

	assert.True(t, ok)
	require.Len(t, loader.loaded, 1)
	require.Contains(t, loader.loaded[0], "customers")
	assert.Equal(t, 3, loader.loaded[0]["customers"].Len())
	assert.NotContains(t, loader.loaded[0], "invoices")
}

func TestRun_FechaPorDefecto(t *testing.T) {
	fetcher := &fakeFetcher{ds: entity.Dataset{}}
	loader := &fakeLoader{}

	p := NewPipeline(fetcher, loader, testLogger())
	p.now = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) }

	require.True(t, p.Run(context.Background(), ""))
	require.Len(t, fetcher.since, 1)

	want := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC).AddDate(0, 0, -defaultLookbackDays).Format("02.01.2006")
	assert.Equal(t, want, fetcher.since[0], "sin fecha se usa la ventana histórica por defecto en DD.MM.AAAA")
}

func TestRun_FechaExplicitaSePropagaTalCual(t *testing.T) {
	fetcher := &fakeFetcher{ds: entity.Dataset{}}
	p := NewPipeline(fetcher, &fakeLoader{}, testLogger())

	require.True(t, p.Run(context.Background(), "05.03.2023"))
	assert.Equal(t, []string{"05.03.2023"}, fetcher.since)
}

func TestRun_CargaFallidaDevuelveFalse(t *testing.T) {
	fetcher := &fakeFetcher{ds: entity.Dataset{}}
	loader := &fakeLoader{err: errors.New("almacén caído")}

	p := NewPipeline(fetcher, loader, testLogger())
	assert.False(t, p.Run(context.Background(), "01.01.2020"))
}

func TestRun_DescartaEjecucionConcurrente(t *testing.T) {
	block := make(chan struct{})
	fetcher := &fakeFetcher{ds: entity.Dataset{}, block: block}
	loader := &fakeLoader{}

	p := NewPipeline(fetcher, loader, testLogger())

	done := make(chan bool)
	go func() { done <- p.Run(context.Background(), "01.01.2020") }()

	// Esperar a que la primera ejecución tome el candado.
	require.Eventually(t, p.Running, time.Second, time.Millisecond)

	assert.False(t, p.Run(context.Background(), "01.01.2020"), "la segunda ejecución se descarta, no se encola")

	close(block)
	assert.True(t, <-done)
	assert.False(t, p.Running())
	require.Len(t, loader.loaded, 1, "solo la primera ejecución llegó a cargar")
}

func TestCronExpr(t *testing.T) {
	expr, err := cronExpr("06:00")
	require.NoError(t, err)
	assert.Equal(t, "0 6 * * *", expr)

	expr, err = cronExpr("23:45")
	require.NoError(t, err)
	assert.Equal(t, "45 23 * * *", expr)

	for _, bad := range []string{"", "6", "24:00", "12:60", "ab:cd"} {
		_, err := cronExpr(bad)
		assert.Error(t, err, bad)
	}
}
