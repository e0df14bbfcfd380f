package dto

// DashboardResponse respuesta de GET /api/analytics/dashboard.
type DashboardResponse struct {
	KPIs            DashboardKPIs       `json:"kpis"`
	QuoteStats      QuoteStatsDTO       `json:"quote_stats"`
	RecentContacts  []RecentContactDTO  `json:"recent_contacts"`
	OverdueInvoices []OverdueInvoiceDTO `json:"overdue_invoices"`
	GeneratedAt     string              `json:"generated_at"`
}

// DashboardKPIs indicadores principales. NewContactsChange es la variación porcentual
// frente a los 7 días anteriores.
type DashboardKPIs struct {
	NewContacts         int     `json:"new_contacts"`
	NewContactsChange   float64 `json:"new_contacts_change"`
	PendingQuotes       int     `json:"pending_quotes"`
	OutstandingInvoices string  `json:"outstanding_invoices"`
}

// QuoteStatsDTO desglose por estado. Accepted cuenta las cotizaciones convertidas en factura.
type QuoteStatsDTO struct {
	Draft          int     `json:"draft"`
	Sent           int     `json:"sent"`
	Accepted       int     `json:"accepted"`
	Rejected       int     `json:"rejected"`
	Expired        int     `json:"expired"`
	AcceptanceRate float64 `json:"acceptance_rate"`
}

// RecentContactDTO contacto reciente.
type RecentContactDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// OverdueInvoiceDTO factura vencida.
type OverdueInvoiceDTO struct {
	ID            string `json:"id"`
	InvoiceNumber string `json:"invoice_number"`
	ContactName   string `json:"contact_name"`
	Total         string `json:"total"`
	Currency      string `json:"currency"`
	DueDate       string `json:"due_date"`
	DaysOverdue   int    `json:"days_overdue"`
}
