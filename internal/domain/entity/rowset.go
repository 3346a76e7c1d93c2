package entity

// Row una fila plana: atributo XML → valor. Los valores coercionados pueden
// ser time.Time o float64; el resto queda como string. Un valor nil es un
// nulo explícito.
type Row map[string]any

// Rowset conjunto tabular de filas con columnas unificadas. Equivale al
// DataFrame del flujo original: las columnas son la unión de los atributos
// vistos en el lote y toda fila que no traiga una columna la lleva como nil
// explícito (nunca como clave ausente).
type Rowset struct {
	Columns []string
	Rows    []Row
}

// NewRowset construye el Rowset unificando columnas en orden de aparición y
// rellenando con nil los huecos de cada fila.
func NewRowset(rows []Row) *Rowset {
	rs := &Rowset{}
	seen := make(map[string]bool)
	for _, r := range rows {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				rs.Columns = append(rs.Columns, k)
			}
		}
	}
	for _, r := range rows {
		for _, col := range rs.Columns {
			if _, ok := r[col]; !ok {
				r[col] = nil
			}
		}
		rs.Rows = append(rs.Rows, r)
	}
	return rs
}

// Len número de filas.
func (rs *Rowset) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Dataset conjunto de Rowsets de una corrida, indexado por nombre de colección.
type Dataset map[string]*Rowset
