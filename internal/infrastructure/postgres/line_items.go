package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/domain/entity"
)

// lineItemRow forma JSONB de una línea; las entidades no llevan etiquetas de serialización.
type lineItemRow struct {
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ServiceID   string          `json:"service_id,omitempty"`
	SortOrder   int             `json:"sort_order"`
}

func encodeItems(items []entity.LineItem) ([]byte, error) {
	rows := make([]lineItemRow, len(items))
	for i, it := range items {
		rows[i] = lineItemRow{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			ServiceID:   it.ServiceID,
			SortOrder:   it.SortOrder,
		}
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	return b, nil
}

func decodeItems(raw []byte) ([]entity.LineItem, error) {
	var rows []lineItemRow
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
	}
	items := make([]entity.LineItem, len(rows))
	for i, r := range rows {
		items[i] = entity.LineItem{
			Description: r.Description,
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
			ServiceID:   r.ServiceID,
			SortOrder:   r.SortOrder,
		}
	}
	return items, nil
}
