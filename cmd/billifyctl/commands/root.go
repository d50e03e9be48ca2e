package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sharadkumardubey/billify-trip-generator/cmd/billifyctl/output"
	"github.com/sharadkumardubey/billify-trip-generator/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	jsonOutput bool

	cfg = config.Load()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "billifyctl",
	Short: "Billify operator tool",
	Long: `billifyctl manages the billify database and works with trip invoices offline.

Commands:
  migrate  - Apply or roll back database migrations
  quote    - Compute base fare, GST and total for a trip
  render   - Write the PDF for a stored invoice record
  preview  - Show an invoice record in the terminal`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(output.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
