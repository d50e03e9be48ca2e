// Package render turns a stored invoice into its on-screen, PDF and
// terminal forms. Every form is built from the same ChargeRows so the
// derived amounts and their labels always agree.
package render

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
)

// CurrencySymbol prefixes rupee amounts. The PDF core fonts have no glyph
// for the rupee sign, so every form uses the ASCII abbreviation.
const CurrencySymbol = "Rs."

const (
	LabelTotal = "Total Amount"
	ThankYou   = "Thank you for your business!"
)

// Terms are printed under the charge table.
var Terms = []string{
	"1. Payment is due upon receipt of invoice.",
	"2. This is a computer-generated invoice and does not require a signature.",
	"3. Please quote invoice number for all correspondences.",
}

// ChargeRow is one line of the charge table.
type ChargeRow struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// Money formats an amount with exactly two fractional digits, rounding
// half away from zero.
func Money(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "-"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Quantity formats a number in its shortest exact form ("230", "12.5").
func Quantity(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "-"
	}
	return decimal.NewFromFloat(v).String()
}

// FormatDate converts an ISO date to dd/mm/yyyy. Unparseable input is
// returned unchanged.
func FormatDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}

// ChargeRows returns Base Fare, GST and Total rows from the stored amounts.
func ChargeRows(inv *models.Invoice) []ChargeRow {
	return []ChargeRow{
		{
			Label:  fmt.Sprintf("Base Fare (%s KM × %s%s/KM)", Quantity(inv.DistanceKm), CurrencySymbol, Quantity(inv.PricePerKm)),
			Amount: Money(inv.BaseAmount),
		},
		{
			Label:  fmt.Sprintf("GST @ %s%%", Quantity(inv.GSTPercentage)),
			Amount: Money(inv.GSTAmount),
		},
		{
			Label:  LabelTotal,
			Amount: Money(inv.TotalAmount),
		},
	}
}

// RateLine is the per-kilometre rate as shown in the travel block.
func RateLine(inv *models.Invoice) string {
	return fmt.Sprintf("%s %s/KM", CurrencySymbol, Money(inv.PricePerKm))
}

// DistanceLine is the trip distance as shown in the travel block.
func DistanceLine(inv *models.Invoice) string {
	return Quantity(inv.DistanceKm) + " KM"
}

// ContactLine is the footer line naming the business contact number.
func ContactLine(inv *models.Invoice) string {
	return "For any queries, please contact: " + inv.ContactNumber
}
