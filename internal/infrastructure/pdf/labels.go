package pdf

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/billing-api/internal/application/billing"
)

type labels struct {
	title, dateLabel, secondLabel    string
	from, to                         string
	description, qty, price, total   string
	subtotal, discount, tax, payment string
	notes, terms, thankYou           string
	termLines                        []string
}

var catalog = map[string]map[billing.DocumentKind]labels{
	"en": {
		billing.DocumentQuote: {
			title: "QUOTE", dateLabel: "Issue Date", secondLabel: "Valid Until",
			termLines: []string{
				"Payment of the first month is required to start the service.",
				"This quote is valid for the period specified above.",
				"Prices are subject to change with 30 days prior notice.",
			},
		},
		billing.DocumentInvoice: {
			title: "INVOICE", dateLabel: "Invoice Date", secondLabel: "Due Date",
			termLines: []string{
				"Payment is due by the date specified above.",
				"For questions about this invoice, please contact us at the email above.",
			},
		},
		billing.DocumentReceipt: {
			title: "PAYMENT RECEIPT", dateLabel: "Payment Date",
			termLines: []string{
				"This is a computer generated receipt.",
				"Please retain this document for your records.",
			},
		},
	},
	"es": {
		billing.DocumentQuote: {
			title: "COTIZACIÓN", dateLabel: "Fecha Emisión", secondLabel: "Válido Hasta",
			termLines: []string{
				"Se requiere el pago del primer mes para iniciar el servicio.",
				"Esta cotización es válida por el período indicado arriba.",
				"Los precios están sujetos a cambios con 30 días de aviso previo.",
			},
		},
		billing.DocumentInvoice: {
			title: "FACTURA", dateLabel: "Fecha Factura", secondLabel: "Vencimiento",
			termLines: []string{
				"El pago vence en la fecha indicada arriba.",
				"Para consultas sobre esta factura, contáctenos al correo indicado.",
			},
		},
		billing.DocumentReceipt: {
			title: "RECIBO DE PAGO", dateLabel: "Fecha Pago",
			termLines: []string{
				"Este es un recibo generado electrónicamente.",
				"Por favor conserve este documento para sus registros.",
			},
		},
	},
}

var common = map[string]labels{
	"en": {
		from:     "FROM", to: "TO", description: "DESCRIPTION", qty: "QTY", price: "PRICE", total: "TOTAL",
		subtotal: "Subtotal", discount: "Discount", tax: "Tax", payment: "Payment method",
		notes:    "Notes", terms: "Terms & Conditions", thankYou: "Thank you for your business!",
	},
	"es": {
		from:     "DE", to: "PARA", description: "DESCRIPCIÓN", qty: "CANT", price: "PRECIO", total: "TOTAL",
		subtotal: "Subtotal", discount: "Descuento", tax: "Impuesto", payment: "Método de pago",
		notes:    "Notas", terms: "Términos y Condiciones", thankYou: "¡Gracias por su preferencia!",
	},
}

// labelsFor textos del documento; idioma desconocido cae a inglés.
func labelsFor(lang string, kind billing.DocumentKind) labels {
	if _, ok := common[lang]; !ok {
		lang = "en"
	}
	l := common[lang]
	k := catalog[lang][kind]
	l.title, l.dateLabel, l.secondLabel, l.termLines = k.title, k.dateLabel, k.secondLabel, k.termLines
	return l
}

var symbols = map[string]string{
	"USD": "$",
	"TTD": "TT$",
	"EUR": "€",
	"COP": "COL$",
}

// formatter importes y fechas según el idioma del documento.
type formatter struct {
	p        *message.Printer
	lang     string
	currency string
}

func newFormatter(lang, currency string) formatter {
	tag := language.English
	if lang == "es" {
		tag = language.Spanish
	}
	return formatter{p: message.NewPrinter(tag), lang: lang, currency: strings.ToUpper(currency)}
}

// amount "$1,234.50" (en) o "$1.234,50" (es).
func (f formatter) amount(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	sym, ok := symbols[f.currency]
	if !ok {
		sym = f.currency + " "
	}
	return sign + sym + f.p.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

func (f formatter) integer(n int64) string {
	return f.p.Sprint(number.Decimal(n))
}

func (f formatter) percent(d decimal.Decimal) string {
	return d.Round(2).String() + "%"
}

func (f formatter) date(t time.Time) string {
	if f.lang == "es" {
		return t.UTC().Format("02/01/2006")
	}
	return t.UTC().Format("Jan 02, 2006")
}
