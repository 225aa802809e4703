package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	BasePrice     decimal.Decimal `json:"basePrice"`
	FabricOptions []string        `json:"fabricOptions,omitempty"`
	ColorOptions  []string        `json:"colorOptions,omitempty"`
	Active        bool            `json:"active"`
	Rating        decimal.Decimal `json:"rating"`
	NumReviews    int             `json:"numReviews"`
	CreatedAt     time.Time       `json:"createdAt"`
}
