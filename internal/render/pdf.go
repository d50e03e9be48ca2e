package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
)

// headerRuleY is where the rule under the header sits when the business
// address fits in three lines. Longer addresses push it and everything
// below it down.
const headerRuleY = 53.0

// PDF renders inv as a single A4 page.
func PDF(inv *models.Invoice) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.InvoiceNumber, false)
	pdf.SetAuthor(inv.BusinessName, true)
	pdf.SetCreator("billify", false)
	pdf.SetCreationDate(inv.CreatedAt)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	dy := businessBlock(pdf, tr, inv) - headerRuleY

	// Invoice block
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(110, 14)
	pdf.CellFormat(80, 8, "TAX INVOICE", "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(110, 26)
	pdf.CellFormat(80, 5, tr("Invoice No: "+inv.InvoiceNumber), "", 1, "R", false, 0, "")
	pdf.SetX(110)
	pdf.CellFormat(80, 5, tr("Date: "+FormatDate(inv.InvoiceDate)), "", 1, "R", false, 0, "")

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, headerRuleY+dy, 190, headerRuleY+dy)

	// Customer block
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(20, 62+dy, "Customer Details:")
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(20, 70+dy, tr("Name: "+inv.CustomerName))
	pdf.Text(120, 70+dy, tr("Phone: "+inv.CustomerPhone))
	pdf.Line(20, 75+dy, 190, 75+dy)

	// Travel block
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(20, 85+dy, "Travel Details:")
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(20, 95+dy, tr("From: "+inv.FromLocation))
	pdf.Text(120, 95+dy, tr("To: "+inv.ToLocation))
	pdf.Text(20, 105+dy, tr("Distance: "+DistanceLine(inv)))
	pdf.Text(120, 105+dy, tr("Rate: "+RateLine(inv)))
	tableY := 115 + dy
	if inv.VehicleNumber != "" {
		pdf.Text(20, 112+dy, tr("Vehicle: "+inv.VehicleNumber))
		tableY = 120 + dy
	}

	// Charge table
	const labelW, amountW, rowH = 130.0, 40.0, 8.0
	pdf.SetXY(20, tableY)
	pdf.SetFillColor(66, 135, 245)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelW, rowH, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountW, rowH, fmt.Sprintf("Amount (%s)", CurrencySymbol), "1", 1, "R", true, 0, "")

	pdf.SetTextColor(0, 0, 0)
	rows := ChargeRows(inv)
	for i, row := range rows {
		last := i == len(rows)-1
		style := ""
		if last {
			style = "B"
			pdf.SetFillColor(240, 240, 240)
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.SetX(20)
		pdf.CellFormat(labelW, rowH, tr(row.Label), "1", 0, "L", last, 0, "")
		pdf.CellFormat(amountW, rowH, row.Amount, "1", 1, "R", last, 0, "")
	}

	// Terms and footer
	y := pdf.GetY() + 10
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Text(20, y, "Terms & Conditions:")
	pdf.SetFont("Helvetica", "", 9)
	for i, line := range Terms {
		pdf.Text(25, y+10+float64(i)*5, line)
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(20, y+26)
	pdf.CellFormat(170, 5, ThankYou, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetX(20)
	pdf.CellFormat(170, 5, tr(ContactLine(inv)), "", 1, "C", false, 0, "")
	pdf.SetX(20)
	pdf.CellFormat(170, 5, tr(inv.BusinessEmail), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

// businessBlock draws the business name, address and registration lines and
// returns the y of the rule that closes the header.
func businessBlock(pdf *fpdf.Fpdf, tr func(string) string, inv *models.Invoice) float64 {
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(20, 20, tr(inv.BusinessName))

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(20, 26)
	pdf.MultiCell(100, 5, tr(inv.BusinessAddress), "", "L", false)

	y := math.Max(pdf.GetY()+4, 45)
	pdf.Text(20, y, tr("GST No: "+inv.GSTNumber))
	if inv.ProprietorName != "" {
		pdf.Text(20, y+4, tr("Proprietor: "+inv.ProprietorName))
	}
	return y + 8
}
