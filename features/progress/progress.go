package progress

import "strings"

// Folder is the order record. Stage, NextStep and NextStepOwner are manual
// overrides set by staff; empty means "use the computed value".
type Folder struct {
	ID            string `json:"id"`
	CustomerID    string `json:"customer_id"`
	Stage         string `json:"stage,omitempty"`
	NextStep      string `json:"next_step,omitempty"`
	NextStepOwner string `json:"next_step_owner,omitempty"`
	FilesTotal    int    `json:"files_total"`
	FilesViewed   int    `json:"files_viewed"`
}

type Quote struct {
	ID            string     `json:"id"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	QuoteNumber   string     `json:"quote_number"`
	Total         float64    `json:"total"`
	TaxRate       float64    `json:"tax_rate"`
	Currency      string     `json:"currency"`
	LineItems     []LineItem `json:"line_items,omitempty"`
}

type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// Shipment is a zero value when the folder has no shipment yet.
type Shipment struct {
	HasShipment        bool   `json:"has_shipment"`
	Status             string `json:"status"`
	ActualDeliveryDate string `json:"actual_delivery_date,omitempty"`
}

type FormAssignment struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	IsCompleted    bool   `json:"is_completed"`
	DeliveryTiming string `json:"delivery_timing"`
}

type Esignature struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsCompleted bool   `json:"is_completed"`
}

// normalizeStatus is the single normalization point for the string-keyed
// status values arriving from external records.
func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QuotePaid reports whether the quote's payment has settled.
func QuotePaid(q *Quote) bool {
	if q == nil {
		return false
	}
	switch normalizeStatus(q.PaymentStatus) {
	case "paid", "succeeded":
		return true
	}
	return false
}

// QuoteConfirmed reports whether the customer has committed to the quote,
// either by paying or by accepting it.
func QuoteConfirmed(q *Quote) bool {
	if q == nil {
		return false
	}
	if QuotePaid(q) {
		return true
	}
	switch normalizeStatus(q.Status) {
	case "accepted", "approved":
		return true
	}
	return false
}
