package domain

import "time"

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentPix        PaymentMethod = "pix"
)

// Shipping holds the delivery details collected at checkout.
type Shipping struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
}

// Order is the result of a checkout. It is logged, not stored.
type Order struct {
	ID            string        `json:"id"`
	Shipping      Shipping      `json:"shipping"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Lines         []CartLine    `json:"lines"`
	ItemCount     int           `json:"itemCount"`
	TotalCents    int64         `json:"totalCents"`
	CreatedAt     time.Time     `json:"createdAt"`
}
