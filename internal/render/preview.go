package render

import "github.com/sharadkumardubey/billify-trip-generator/internal/models"

// Preview is the on-screen summary of an invoice.
type Preview struct {
	Title           string      `json:"title"`
	InvoiceNumber   string      `json:"invoice_number"`
	Date            string      `json:"date"`
	BusinessName    string      `json:"business_name"`
	BusinessAddress string      `json:"business_address"`
	GSTNumber       string      `json:"gst_number"`
	ProprietorName  string      `json:"proprietor_name"`
	CustomerName    string      `json:"customer_name"`
	CustomerPhone   string      `json:"customer_phone"`
	From            string      `json:"from"`
	To              string      `json:"to"`
	Distance        string      `json:"distance"`
	Rate            string      `json:"rate"`
	VehicleNumber   string      `json:"vehicle_number,omitempty"`
	Charges         []ChargeRow `json:"charges"`
	Currency        string      `json:"currency"`
	Terms           []string    `json:"terms"`
	Footer          []string    `json:"footer"`
	FileName        string      `json:"file_name"`
}

// BuildPreview assembles the on-screen summary from a stored invoice.
func BuildPreview(inv *models.Invoice) *Preview {
	return &Preview{
		Title:           "TAX INVOICE",
		InvoiceNumber:   inv.InvoiceNumber,
		Date:            FormatDate(inv.InvoiceDate),
		BusinessName:    inv.BusinessName,
		BusinessAddress: inv.BusinessAddress,
		GSTNumber:       inv.GSTNumber,
		ProprietorName:  inv.ProprietorName,
		CustomerName:    inv.CustomerName,
		CustomerPhone:   inv.CustomerPhone,
		From:            inv.FromLocation,
		To:              inv.ToLocation,
		Distance:        DistanceLine(inv),
		Rate:            RateLine(inv),
		VehicleNumber:   inv.VehicleNumber,
		Charges:         ChargeRows(inv),
		Currency:        "INR",
		Terms:           Terms,
		Footer:          []string{ThankYou, ContactLine(inv), inv.BusinessEmail},
		FileName:        inv.FileName(),
	}
}
