package domain

import "github.com/shopspring/decimal"

// BillEntry is one calendar day of a bill. NotTaken days carry no quantity or charge.
type BillEntry struct {
	Date          Date            `json:"date"`
	Quantity      decimal.Decimal `json:"quantity"`
	PricePerLitre decimal.Decimal `json:"pricePerLiter"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	NotTaken      bool            `json:"notTaken"`
}

type Bill struct {
	Start         Date            `json:"start"`
	End           Date            `json:"end"`
	Entries       []BillEntry     `json:"entries"`
	Total         decimal.Decimal `json:"total"`
	DeliveredDays int             `json:"deliveredDays"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
}

// ClientBill is the document input handed to mail and rendering collaborators.
type ClientBill struct {
	ClientName     string `json:"clientName"`
	ClientLocation string `json:"clientLocation"`
	ClientPhone    string `json:"clientPhone"`
	Bill
}
