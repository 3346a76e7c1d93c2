// Package directo implementa el conector a la API XML de Directo (xmlcore).
// Cada entidad se pide con un POST de formulario y la respuesta es un XML
// cuyos elementos hijos llevan los campos como atributos.
package directo

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/jhoicas/finanzas-ai/internal/domain"
	"github.com/jhoicas/finanzas-ai/internal/domain/entity"
	"github.com/jhoicas/finanzas-ai/pkg/logger"
)

// authFailureType código de type en <result> que indica token rechazado.
const authFailureType = "5"

// Client conector HTTP a Directo. Seguro para reuso secuencial; no guarda
// estado entre peticiones más allá del token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient construye el conector. Timeout de red de 60 s: las extracciones
// históricas de Directo pueden tardar bastante en responder.
func NewClient(baseURL, token string, log *logger.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log.Component("directo"),
	}
}

// Fetch extrae un tipo de entidad. since (DD.MM.YYYY) filtra por timestamp de
// modificación; vacío trae todo. Un fallo es fatal para esta entidad en la
// corrida actual pero no para sus hermanas: esa política la aplica el caller.
func (c *Client) Fetch(ctx context.Context, typ entity.Type, since string) (*entity.Rowset, error) {
	form := url.Values{
		"token": {c.token},
		"get":   {"1"},
		"what":  {typ.What},
	}
	if since != "" {
		form.Set("ts", since)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("directo: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("directo: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("directo: llamada HTTP fallida (%s): %w", typ.What, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20)) // max 64 MB
	if err != nil {
		return nil, fmt.Errorf("directo: leer respuesta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directo: HTTP %d para %s: %w", resp.StatusCode, typ.What, domain.ErrAPI)
	}

	rows, err := parseRows(rawBody)
	if err != nil {
		return nil, fmt.Errorf("directo: %s: %w", typ.What, err)
	}

	rs := entity.NewRowset(rows)
	coerceFields(typ, rs)

	c.log.Info().Str("what", typ.What).Int("filas", rs.Len()).Msg("entidad extraída")
	return rs, nil
}

// FetchAll extrae todas las entidades en orden fijo. Un fallo en una entidad
// se registra y se continúa con las siguientes; el Dataset devuelto contiene
// solo las entidades extraídas con éxito. failures informa cuántas fallaron.
func (c *Client) FetchAll(ctx context.Context, since string) (entity.Dataset, int) {
	ds := make(entity.Dataset, len(entity.All))
	failures := 0
	for _, typ := range entity.All {
		rs, err := c.Fetch(ctx, typ, since)
		if err != nil {
			failures++
			c.log.Error().Err(err).Str("what", typ.What).Msg("extracción fallida; se continúa con las demás entidades")
			continue
		}
		ds[typ.Index] = rs
	}
	return ds, failures
}

// parseRows interpreta el cuerpo XML: la raíz señala éxito, error de
// aplicación (<err>) o token rechazado (<result type="5">); cada hijo es una
// fila cuyos atributos son los campos.
func parseRows(body []byte) ([]entity.Row, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("XML ilegible: %v: %w", err, domain.ErrParse)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("documento XML sin raíz: %w", domain.ErrParse)
	}

	switch {
	case root.Tag == "err":
		return nil, fmt.Errorf("respuesta de error de Directo: %s: %w",
			strings.TrimSpace(root.Text()), domain.ErrAPI)
	case root.Tag == "result" && root.SelectAttrValue("type", "") == authFailureType:
		return nil, fmt.Errorf("token rechazado: %s: %w",
			root.SelectAttrValue("desc", ""), domain.ErrAuth)
	}

	var rows []entity.Row
	for _, el := range root.ChildElements() {
		row := make(entity.Row, len(el.Attr))
		for _, attr := range el.Attr {
			row[attr.Key] = attr.Value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// coerceFields normaliza los campos conocidos de cada entidad: fechas a
// time.Time y números a float64. Valor imparseable → nulo explícito, igual
// que el errors="coerce" del flujo original.
func coerceFields(typ entity.Type, rs *entity.Rowset) {
	switch typ.Index {
	case entity.Invoices.Index:
		coerceDate(rs, "transactiondate")
		coerceNumber(rs, "number")
	case entity.Purchases.Index:
		coerceDate(rs, "date1")
	}
}

// dateLayouts formatos que emite Directo, del más al menos específico.
var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006",
}

func coerceDate(rs *entity.Rowset, field string) {
	if !hasColumn(rs, field) {
		return
	}
	for _, row := range rs.Rows {
		s, ok := row[field].(string)
		if !ok || s == "" {
			row[field] = nil
			continue
		}
		row[field] = parseDate(s)
	}
}

// parseDate devuelve time.Time o nil si ningún formato aplica.
func parseDate(s string) any {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t
		}
	}
	return nil
}

func coerceNumber(rs *entity.Rowset, field string) {
	if !hasColumn(rs, field) {
		return
	}
	for _, row := range rs.Rows {
		s, ok := row[field].(string)
		if !ok || s == "" {
			row[field] = nil
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		// ParseFloat acepta "NaN" e "Inf"; un valor inexpresable en JSON se
		// trata como imparseable y queda en nulo explícito.
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			row[field] = nil
			continue
		}
		row[field] = f
	}
}

func hasColumn(rs *entity.Rowset, field string) bool {
	for _, c := range rs.Columns {
		if c == field {
			return true
		}
	}
	return false
}
