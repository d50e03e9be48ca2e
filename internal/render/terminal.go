package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
)

var (
	colorPrimary = lipgloss.Color("#4287F5")
	colorMuted   = lipgloss.Color("#6B7280")
	colorBorder  = lipgloss.Color("#4B5563")

	titleStyle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	labelStyle   = lipgloss.NewStyle().Width(44)
	amountStyle  = lipgloss.NewStyle().Width(14).Align(lipgloss.Right)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)
)

// Terminal renders inv for a terminal.
func Terminal(inv *models.Invoice) string {
	var b strings.Builder

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(36).Render(
			headingStyle.Render(inv.BusinessName)+"\n"+
				mutedStyle.Render(inv.BusinessAddress)+"\n"+
				"GST No: "+inv.GSTNumber),
		lipgloss.NewStyle().Width(24).Align(lipgloss.Right).Render(
			titleStyle.Render("TAX INVOICE")+"\n"+
				"Invoice No: "+inv.InvoiceNumber+"\n"+
				"Date: "+FormatDate(inv.InvoiceDate)),
	)
	b.WriteString(header)
	b.WriteString("\n\n")

	b.WriteString(headingStyle.Render("Customer Details:"))
	b.WriteString("\nName: " + inv.CustomerName + "   Phone: " + inv.CustomerPhone + "\n\n")

	b.WriteString(headingStyle.Render("Travel Details:"))
	b.WriteString("\nFrom: " + inv.FromLocation + "   To: " + inv.ToLocation)
	b.WriteString("\nDistance: " + DistanceLine(inv) + "   Rate: " + RateLine(inv))
	if inv.VehicleNumber != "" {
		b.WriteString("\nVehicle: " + inv.VehicleNumber)
	}
	b.WriteString("\n\n")

	rows := ChargeRows(inv)
	for i, row := range rows {
		line := lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(row.Label), amountStyle.Render(row.Amount))
		if i == len(rows)-1 {
			line = headingStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + mutedStyle.Render(strings.Join(Terms, "\n")) + "\n\n")
	b.WriteString(ThankYou + "\n" + ContactLine(inv) + "\n" + inv.BusinessEmail)

	return boxStyle.Render(b.String())
}
