package expense

import "time"

// Expense is one recorded spend. The service persists it first and then
// emits the matching change event; the audit trail sees event time, which is
// CreatedAt here.
type Expense struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	CategoryID    string    `json:"categoryId,omitempty"`
	Amount        float64   `json:"amount"`
	Description   string    `json:"description,omitempty"`
	PaymentMethod string    `json:"paymentMethod"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CreateInput carries the caller-supplied fields. Optional fields left blank
// fall back to the shared defaults from configuration.
type CreateInput struct {
	UserID        string  `json:"userId"`
	CategoryID    string  `json:"categoryId"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	PaymentMethod string  `json:"paymentMethod"`
	Comment       string  `json:"comment"`
}

// UpdateInput carries the mutable fields. Zero values leave the stored field
// untouched; ownership and creation time never change.
type UpdateInput struct {
	CategoryID    string  `json:"categoryId"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	PaymentMethod string  `json:"paymentMethod"`
	Comment       string  `json:"comment"`
}
