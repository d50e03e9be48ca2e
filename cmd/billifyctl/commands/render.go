package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sharadkumardubey/billify-trip-generator/cmd/billifyctl/output"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
	"github.com/sharadkumardubey/billify-trip-generator/internal/render"
	"github.com/spf13/cobra"
)

var (
	// Render flags
	inputPath string
	outputDir string
)

// renderCmd writes the PDF for an invoice record
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write the PDF for a stored invoice record",
	Long: `Read an invoice record (the JSON returned by GET /api/v1/invoices/:number)
and write Invoice_<number>.pdf.

Examples:
  billifyctl render --in invoice.json --out ./pdfs`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := runRender(inputPath, outputDir)
		if err != nil {
			return err
		}
		output.Success("Wrote %s", path)
		return nil
	},
}

// previewCmd prints an invoice record
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show an invoice record in the terminal",
	Long: `Print the on-screen summary of an invoice record.

Examples:
  billifyctl preview --in invoice.json
  billifyctl preview --in invoice.json --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPreview(inputPath)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd, previewCmd)

	renderCmd.Flags().StringVar(&inputPath, "in", "", "Invoice record JSON file")
	renderCmd.Flags().StringVar(&outputDir, "out", ".", "Directory for the PDF")
	_ = renderCmd.MarkFlagRequired("in")

	previewCmd.Flags().StringVar(&inputPath, "in", "", "Invoice record JSON file")
	_ = previewCmd.MarkFlagRequired("in")
}

func loadInvoice(path string) (*models.Invoice, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var inv models.Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if inv.InvoiceNumber == "" {
		return nil, fmt.Errorf("%s: invoice_number is missing", path)
	}
	if strings.ContainsAny(inv.InvoiceNumber, `/\`) || strings.Contains(inv.InvoiceNumber, "..") {
		return nil, fmt.Errorf("%s: invoice_number %q is not a valid file name", path, inv.InvoiceNumber)
	}
	return &inv, nil
}

func runRender(in, outDir string) (string, error) {
	inv, err := loadInvoice(in)
	if err != nil {
		return "", err
	}

	pdf, err := render.PDF(inv)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, inv.FileName())
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func runPreview(in string) error {
	inv, err := loadInvoice(in)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(render.BuildPreview(inv))
	}
	output.Raw(render.Terminal(inv))
	return nil
}
