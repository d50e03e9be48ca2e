package commands

import (
	"github.com/sharadkumardubey/billify-trip-generator/cmd/billifyctl/output"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
	"github.com/sharadkumardubey/billify-trip-generator/internal/render"
	"github.com/sharadkumardubey/billify-trip-generator/internal/service"
	"github.com/spf13/cobra"
)

var (
	// Quote flags
	distanceKm    float64
	pricePerKm    float64
	gstPercentage float64
)

// quoteCmd computes charges for a trip
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Compute base fare, GST and total for a trip",
	Long: `Compute the charges for a trip without storing anything.

Examples:
  billifyctl quote --distance 230 --rate 15            # GST from INVOICE_DEFAULT_GST_PERCENT
  billifyctl quote --distance 100 --rate 10 --gst 18
  billifyctl quote --distance 100 --rate 10 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuote(distanceKm, pricePerKm, gstPercentage)
	},
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().Float64Var(&distanceKm, "distance", 0, "Trip distance in km")
	quoteCmd.Flags().Float64Var(&pricePerKm, "rate", 0, "Price per km")
	quoteCmd.Flags().Float64Var(&gstPercentage, "gst", cfg.Invoice.DefaultGSTPercent, "GST percentage (0-28)")
	_ = quoteCmd.MarkFlagRequired("distance")
	_ = quoteCmd.MarkFlagRequired("rate")
}

func runQuote(distance, rate, gst float64) error {
	quote, err := service.Quote(&models.TripInput{
		DistanceKm:    models.Number(distance),
		PricePerKm:    models.Number(rate),
		GSTPercentage: models.Number(gst),
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(quote)
	}

	output.Section("Quote")
	output.KeyValue("Distance", render.Quantity(quote.DistanceKm)+" KM")
	output.KeyValue("Rate", render.CurrencySymbol+" "+render.Money(quote.PricePerKm)+"/KM")
	output.KeyValue("Base Fare", render.Money(quote.BaseAmount))
	output.KeyValue("GST @ "+render.Quantity(quote.GSTPercentage)+"%", render.Money(quote.GSTAmount))
	output.KeyValue(render.LabelTotal, render.Money(quote.TotalAmount))
	return nil
}
