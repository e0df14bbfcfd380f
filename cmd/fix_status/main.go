// fix_status genera un script SQL que normaliza a mayúsculas los estados heredados
// (p. ej. 'sent', 'Sent') de cotizaciones, facturas y contactos.
//
// Uso: go run ./cmd/fix_status [salida.sql]
// Sin argumento escribe en stdout. El script es idempotente.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/billing-api/internal/domain/entity"
)

type table struct {
	name     string
	statuses []string
}

var tables = []table{
	{"contacts", []string{
		string(entity.ContactNew), string(entity.ContactContacted), string(entity.ContactQualified),
		string(entity.ContactDrafting), string(entity.ContactQuoted), string(entity.ContactConverted),
		string(entity.ContactLost),
	}},
	{"quotes", []string{
		string(entity.QuoteDraft), string(entity.QuoteSent), string(entity.QuoteAccepted),
		string(entity.QuoteRejected), string(entity.QuoteExpired),
	}},
	{"invoices", []string{
		string(entity.InvoicePending), string(entity.InvoicePaid), string(entity.InvoiceOverdue),
		string(entity.InvoiceCancelled),
	}},
}

func main() {
	var out io.Writer = os.Stdout
	if len(os.Args) > 1 {
		f, err := os.Create(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if err := writeScript(out); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	if len(os.Args) > 1 {
		fmt.Fprintf(os.Stderr, "Generado: %s\n", os.Args[1])
	}
}

// legacyVariants variantes de escritura distintas del valor canónico ("sent", "Sent").
func legacyVariants(canonical string) []string {
	seen := map[string]bool{canonical: true}
	var out []string
	for _, c := range []cases.Caser{cases.Lower(language.Und), cases.Title(language.Und)} {
		v := c.String(canonical)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func writeScript(w io.Writer) error {
	var b strings.Builder
	b.WriteString("-- Normaliza estados heredados a su forma canónica en mayúsculas.\n")
	b.WriteString("BEGIN;\n\n")
	for _, t := range tables {
		for _, st := range t.statuses {
			quoted := make([]string, 0, 2)
			for _, v := range legacyVariants(st) {
				quoted = append(quoted, "'"+v+"'")
			}
			fmt.Fprintf(&b, "UPDATE %s SET status = '%s' WHERE status IN (%s);\n",
				t.name, st, strings.Join(quoted, ", "))
		}
		// cualquier otra combinación de mayúsculas/minúsculas
		fmt.Fprintf(&b, "UPDATE %s SET status = UPPER(status) WHERE status <> UPPER(status);\n\n", t.name)
	}
	b.WriteString("COMMIT;\n")
	_, err := io.WriteString(w, b.String())
	return err
}
