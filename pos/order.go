package pos

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors returned by NewOrder.
var (
	ErrEmptyBillNumber = errors.New("bill number is empty")
	ErrNoItems         = errors.New("order has no line items")
	ErrEmptyItemName   = errors.New("line item name is empty")
	ErrBadQuantity     = errors.New("line item quantity must be positive")
	ErrNegativeRate    = errors.New("line item rate must not be negative")
)

// LineItem is one service line on a laundry order. Amount is computed by
// the caller and must equal Quantity * Rate.
type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Rate     float64 `json:"rate"`
	Amount   float64 `json:"amount"`
	WashType string  `json:"washType,omitempty"`
}

// Order is one laundry order as handed over by the order-entry UI,
// immutable for the duration of a print call.
type Order struct {
	LaundryName    string     `json:"laundryName"`
	LaundryAddress string     `json:"laundryAddress,omitempty"`
	LaundryPhone   string     `json:"laundryPhone,omitempty"`
	BillNumber     string     `json:"billNumber"`
	CustomerName   string     `json:"customerName"`
	CustomerPhone  string     `json:"customerPhone,omitempty"`
	Items          []LineItem `json:"items"`
	Subtotal       float64    `json:"subtotal"`
	Discount       float64    `json:"discount"`
	Delivery       float64    `json:"delivery"`
	GST            float64    `json:"gst"`
	GrandTotal     float64    `json:"grandTotal"`
	ClosingMessage string     `json:"closingMessage,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`

	PrintTags        bool `json:"printTags"`
	GenerateBarcodes bool `json:"generateBarcodes"`
}

// NewOrder validates field constraints once, at construction, so the
// encoders can assume well-formed input.
func NewOrder(o Order) (*Order, error) {
	if o.BillNumber == "" {
		return nil, ErrEmptyBillNumber
	}
	if len(o.Items) == 0 {
		return nil, ErrNoItems
	}
	for i, item := range o.Items {
		if item.Name == "" {
			return nil, fmt.Errorf("item %d: %w", i, ErrEmptyItemName)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item %d (%s): %w", i, item.Name, ErrBadQuantity)
		}
		if item.Rate < 0 {
			return nil, fmt.Errorf("item %d (%s): %w", i, item.Name, ErrNegativeRate)
		}
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	return &o, nil
}

// TotalUnits is the number of physical garment tags the order produces.
func (o *Order) TotalUnits() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// PrintOutcome reports the per-artifact result of one orchestration call.
// Partial success (one printer worked, the other did not) is a normal,
// representable state and never an error of the call itself.
type PrintOutcome struct {
	BillPrinted bool     `json:"billPrinted"`
	TagsPrinted bool     `json:"tagsPrinted"`
	Errors      []string `json:"errors,omitempty"`
}
