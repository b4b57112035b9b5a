package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Client struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	Location       string          `json:"location"`
	TimeShift      Shift           `json:"timeShift"`
	PricePerLitre  decimal.Decimal `json:"pricePerLitre"`
	Quantity       decimal.Decimal `json:"quantity"` // default daily volume in litres
	PriorityStatus bool            `json:"priorityStatus"`
	CreatedAt      time.Time       `json:"createdAt"`
	Version        int32           `json:"-"`
}

// NewClient rejects records missing the fields the delivery engine relies on.
func NewClient(name string, shift Shift, pricePerLitre, quantity decimal.Decimal) (*Client, error) {
	c := &Client{
		Name:          name,
		TimeShift:     shift,
		PricePerLitre: pricePerLitre,
		Quantity:      quantity,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) Validate() error {
	switch {
	case c.Name == "":
		return missingField("client", "name")
	case !c.TimeShift.Valid():
		return missingField("client", "timeShift AM or PM")
	case c.PricePerLitre.IsNegative():
		return missingField("client", "non-negative pricePerLitre")
	case !c.Quantity.IsPositive():
		return missingField("client", "positive quantity")
	}
	return nil
}
