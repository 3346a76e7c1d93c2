package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	infraelastic "github.com/jhoicas/finanzas-ai/internal/infrastructure/elastic"
)

// printReport imprime el resumen de verificación con cifras formateadas para
// lectura humana.
func printReport(r *infraelastic.VerifyReport) {
	p := message.NewPrinter(language.EuropeanSpanish)

	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("Verificación de datos indexados")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Println("\nDocumentos por colección:")
	for _, stat := range r.Indices {
		p.Printf("  %-12s %d\n", stat.Index, stat.Docs)
	}
	p.Printf("  %-12s %d\n", "TOTAL", r.TotalDocs)

	if r.InvoiceCount == 0 {
		fmt.Println("\nNo hay facturas indexadas. Ejecuta el ETL primero.")
		return
	}

	fmt.Println("\nFacturas:")
	p.Printf("  Cantidad:         %d\n", r.InvoiceCount)
	if r.MinDate != nil && r.MaxDate != nil {
		fmt.Printf("  Rango de fechas:  %s - %s\n", formatDate(r.MinDate), formatDate(r.MaxDate))
	}
	fmt.Printf("  Ingreso total:    %s\n", formatAmount(p, r.TotalRevenue))
	fmt.Printf("  Factura promedio: %s\n", formatAmount(p, r.AverageInvoice))

	if len(r.NewestInvoice) > 0 {
		fmt.Println("\nFactura más reciente:")
		for _, field := range []string{"number", "transactiondate", "customername", "totalamount"} {
			if v, ok := r.NewestInvoice[field]; ok && v != nil {
				fmt.Printf("  %-16s %v\n", field+":", v)
			}
		}
	}
}

func formatDate(t *time.Time) string {
	return t.Format("02.01.2006")
}

func formatAmount(p *message.Printer, d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return p.Sprintf("%.2f", f)
}
