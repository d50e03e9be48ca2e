package models

import (
	"strings"
	"time"
)

// TripInput is the customer and trip data entered for one invoice.
type TripInput struct {
	FromLocation  string `json:"from_location" validate:"min=2"`
	ToLocation    string `json:"to_location" validate:"min=2"`
	DistanceKm    Number `json:"distance_km" validate:"finite,gt=0"`
	PricePerKm    Number `json:"price_per_km" validate:"finite,gt=0"`
	GSTPercentage Number `json:"gst_percentage" validate:"finite,gte=0,lte=28"`
	CustomerName  string `json:"customer_name" validate:"min=2"`
	CustomerPhone string `json:"customer_phone" validate:"phone10"`
	Date          string `json:"date" validate:"datetime=2006-01-02"`
	VehicleNumber string `json:"vehicle_number,omitempty" validate:"max=20"`
}

// Normalize trims text fields and upper-cases the vehicle registration.
func (t *TripInput) Normalize() {
	t.FromLocation = strings.TrimSpace(t.FromLocation)
	t.ToLocation = strings.TrimSpace(t.ToLocation)
	t.CustomerName = strings.TrimSpace(t.CustomerName)
	t.CustomerPhone = strings.TrimSpace(t.CustomerPhone)
	t.Date = strings.TrimSpace(t.Date)
	t.VehicleNumber = strings.ToUpper(strings.TrimSpace(t.VehicleNumber))
}

// Charges are the derived monetary values of a trip, unrounded.
type Charges struct {
	BaseAmount  float64 `json:"base_amount"`
	GSTAmount   float64 `json:"gst_amount"`
	TotalAmount float64 `json:"total_amount"`
}

// Invoice is the immutable, denormalized invoice record. Business fields are
// copied at generation time; monetary fields are stored, never recomputed.
type Invoice struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	InvoiceNumber string    `json:"invoice_number" db:"invoice_number"`
	InvoiceDate   string    `json:"invoice_date" db:"invoice_date"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	BusinessName    string `json:"business_name" db:"business_name"`
	BusinessAddress string `json:"business_address" db:"business_address"`
	GSTNumber       string `json:"gst_number" db:"gst_number"`
	ProprietorName  string `json:"proprietor_name" db:"proprietor_name"`
	ContactNumber   string `json:"contact_number" db:"contact_number"`
	BusinessEmail   string `json:"business_email" db:"business_email"`

	CustomerName  string  `json:"customer_name" db:"customer_name"`
	CustomerPhone string  `json:"customer_phone" db:"customer_phone"`
	FromLocation  string  `json:"from_location" db:"from_location"`
	ToLocation    string  `json:"to_location" db:"to_location"`
	DistanceKm    float64 `json:"distance_km" db:"distance_km"`
	PricePerKm    float64 `json:"price_per_km" db:"price_per_km"`
	GSTPercentage float64 `json:"gst_percentage" db:"gst_percentage"`
	VehicleNumber string  `json:"vehicle_number,omitempty" db:"vehicle_number"`

	BaseAmount  float64 `json:"base_amount" db:"base_amount"`
	GSTAmount   float64 `json:"gst_amount" db:"gst_amount"`
	TotalAmount float64 `json:"total_amount" db:"total_amount"`
}

// Charges returns the stored monetary values.
func (i *Invoice) Charges() Charges {
	return Charges{BaseAmount: i.BaseAmount, GSTAmount: i.GSTAmount, TotalAmount: i.TotalAmount}
}

// FileName is the download name of the invoice PDF.
func (i *Invoice) FileName() string {
	return "Invoice_" + i.InvoiceNumber + ".pdf"
}

// QuoteResponse is returned for a charge preview before an invoice exists.
type QuoteResponse struct {
	Charges
	DistanceKm    float64 `json:"distance_km"`
	PricePerKm    float64 `json:"price_per_km"`
	GSTPercentage float64 `json:"gst_percentage"`
}
