package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/finanzas-ai/internal/domain/entity"
	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

// IndexStat documentos por colección.
type IndexStat struct {
	Index string
	Docs  int
}

// VerifyReport resumen del estado de los datos indexados.
type VerifyReport struct {
	Indices   []IndexStat
	TotalDocs int

	// Estadísticas de facturas; InvoiceCount == 0 las deja en cero.
	InvoiceCount   int
	NewestInvoice  map[string]any
	MinDate        *time.Time
	MaxDate        *time.Time
	TotalRevenue   decimal.Decimal
	AverageInvoice decimal.Decimal
}

// Verifier consulta el almacén para informar qué datos hay indexados.
type Verifier struct {
	es  *elasticsearch.Client
	log *logger.Logger
}

// NewVerifier construye el verificador.
func NewVerifier(es *elasticsearch.Client, log *logger.Logger) *Verifier {
	return &Verifier{
		es:  es,
		log: log.Component("verifier"),
	}
}

// Report cuenta documentos por colección y, si hay facturas, calcula rango de
// fechas, factura más reciente, ingreso total y valor promedio. El monto se
// agrega sobre totalamount, el campo declarado en el mapeo de facturas.
func (v *Verifier) Report(ctx context.Context) (*VerifyReport, error) {
	report := &VerifyReport{
		TotalRevenue:   decimal.Zero,
		AverageInvoice: decimal.Zero,
	}

	for _, typ := range entity.All {
		n, err := v.countDocs(ctx, typ.Index)
		if err != nil {
			// Colección inexistente u otra falla puntual: cuenta cero.
			v.log.Debug().Err(err).Str("index", typ.Index).Msg("conteo no disponible")
			continue
		}
		report.Indices = append(report.Indices, IndexStat{Index: typ.Index, Docs: n})
		report.TotalDocs += n
		if typ.Index == entity.Invoices.Index {
			report.InvoiceCount = n
		}
	}

	if report.InvoiceCount == 0 {
		return report, nil
	}

	if err := v.invoiceStats(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (v *Verifier) countDocs(ctx context.Context, index string) (int, error) {
	res, err := v.es.Count(
		v.es.Count.WithContext(ctx),
		v.es.Count.WithIndex(index),
	)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("count %s: %s", index, res.Status())
	}

	var out struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// invoiceStats una búsqueda con la factura más reciente y las agregaciones
// min/max de transactiondate y suma de totalamount.
func (v *Verifier) invoiceStats(ctx context.Context, report *VerifyReport) error {
	body := map[string]any{
		"size":  1,
		"query": map[string]any{"match_all": map[string]any{}},
		"sort":  []any{map[string]any{"transactiondate": map[string]string{"order": "desc"}}},
		"aggs": map[string]any{
			"min_date":     map[string]any{"min": map[string]string{"field": "transactiondate"}},
			"max_date":     map[string]any{"max": map[string]string{"field": "transactiondate"}},
			"total_amount": map[string]any{"sum": map[string]string{"field": "totalamount"}},
		},
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	res, err := v.es.Search(
		v.es.Search.WithContext(ctx),
		v.es.Search.WithIndex(entity.Invoices.Index),
		v.es.Search.WithBody(bytes.NewReader(raw)),
	)
	if err != nil {
		return fmt.Errorf("elastic: estadísticas de facturas: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elastic: estadísticas de facturas: %s", res.Status())
	}

	var env struct {
		Hits struct {
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
		Aggregations struct {
			MinDate struct {
				Value *float64 `json:"value"`
			} `json:"min_date"`
			MaxDate struct {
				Value *float64 `json:"value"`
			} `json:"max_date"`
			TotalAmount struct {
				Value *float64 `json:"value"`
			} `json:"total_amount"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return err
	}

	if len(env.Hits.Hits) > 0 {
		report.NewestInvoice = env.Hits.Hits[0].Source
	}
	report.MinDate = epochMillisToTime(env.Aggregations.MinDate.Value)
	report.MaxDate = epochMillisToTime(env.Aggregations.MaxDate.Value)

	if env.Aggregations.TotalAmount.Value != nil {
		report.TotalRevenue = decimal.NewFromFloat(*env.Aggregations.TotalAmount.Value)
		if report.InvoiceCount > 0 {
			report.AverageInvoice = report.TotalRevenue.
				Div(decimal.NewFromInt(int64(report.InvoiceCount))).
				Round(2)
		}
	}
	return nil
}

// epochMillisToTime las agregaciones de fecha devuelven epoch en milisegundos.
func epochMillisToTime(v *float64) *time.Time {
	if v == nil {
		return nil
	}
	t := time.UnixMilli(int64(*v)).UTC()
	return &t
}
