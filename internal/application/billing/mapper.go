package billing

import (
	"fmt"
	"time"

	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/money"
)

func itemsFromDTO(in []dto.LineItemDTO) []entity.LineItem {
	out := make([]entity.LineItem, len(in))
	for i, it := range in {
		order := it.SortOrder
		if order == 0 {
			order = i
		}
		out[i] = entity.LineItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			ServiceID:   it.ServiceID,
			SortOrder:   order,
		}
	}
	return out
}

func itemsToDTO(items []entity.LineItem) []dto.LineItemDTO {
	out := make([]dto.LineItemDTO, len(items))
	for i, it := range items {
		out[i] = dto.LineItemDTO{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			ServiceID:   it.ServiceID,
			SortOrder:   it.SortOrder,
			LineTotal:   it.LineTotal(),
		}
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: fecha %q (se espera %s)", domain.ErrInvalidInput, s, dto.DateLayout)
	}
	return t, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dto.DateLayout)
}

func toContactResponse(c *entity.Contact) *dto.ContactResponse {
	return &dto.ContactResponse{
		ID:      c.ID,
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Company: c.Company,
		Status:  string(c.Status),
	}
}

func toQuoteResponse(q *entity.Quote) *dto.QuoteResponse {
	return &dto.QuoteResponse{
		ID:            q.ID,
		QuoteNumber:   q.QuoteNumber,
		ContactID:     q.ContactID,
		LeadID:        q.LeadID,
		Status:        string(q.Status),
		Items:         itemsToDTO(q.Items),
		DiscountType:  string(q.DiscountType),
		DiscountValue: q.DiscountValue,
		Subtotal:      money.Present(q.Subtotal),
		Discount:      money.Present(q.Discount),
		Tax:           money.Present(q.Tax),
		Total:         money.Present(q.Total),
		Currency:      q.Currency,
		Language:      q.Language,
		Notes:         q.Notes,
		ValidUntil:    formatDate(q.ValidUntil),
		ReminderSent:  q.ReminderSent,
		SentAt:        formatTime(q.SentAt),
		CreatedAt:     formatTime(&q.CreatedAt),
	}
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	out := &dto.InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		QuoteID:       inv.QuoteID,
		ContactID:     inv.ContactID,
		Status:        string(inv.Status),
		Items:         itemsToDTO(inv.Items),
		Subtotal:      money.Present(inv.Subtotal),
		Discount:      money.Present(inv.Discount),
		Tax:           money.Present(inv.Tax),
		Total:         money.Present(inv.Total),
		Currency:      inv.Currency,
		Language:      inv.Language,
		Notes:         inv.Notes,
		DueDate:       formatDate(&inv.DueDate),
		PaidAt:        formatTime(inv.PaidAt),
		PaymentMethod: inv.PaymentMethod,
		Recurring:     inv.Recurring,
		ConvertedFrom: inv.ConvertedFrom,
		CreatedAt:     formatTime(&inv.CreatedAt),
	}
	if inv.TaxRate != nil {
		rate := money.Present(*inv.TaxRate)
		out.TaxRate = &rate
	}
	return out
}
