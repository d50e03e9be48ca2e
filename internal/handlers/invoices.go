package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
	"github.com/sharadkumardubey/billify-trip-generator/internal/render"
)

// QuoteInvoice handles POST /api/v1/invoices/quote
func (h *Handlers) QuoteInvoice(c *gin.Context) {
	var trip models.TripInput
	if err := c.ShouldBindJSON(&trip); err != nil {
		badRequest(c, err)
		return
	}

	quote, err := h.invoiceService.Quote(&trip)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// CreateInvoice handles POST /api/v1/invoices
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var trip models.TripInput
	if err := c.ShouldBindJSON(&trip); err != nil {
		badRequest(c, err)
		return
	}

	inv, err := h.invoiceService.Create(c.Request.Context(), session(c), &trip)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/invoices/"+inv.InvoiceNumber)
	c.JSON(http.StatusCreated, inv)
}

// ListInvoices handles GET /api/v1/invoices
func (h *Handlers) ListInvoices(c *gin.Context) {
	invoices, err := h.invoiceService.List(c.Request.Context(), session(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invoices": invoices,
		"total":    len(invoices),
	})
}

// GetInvoice handles GET /api/v1/invoices/:number
func (h *Handlers) GetInvoice(c *gin.Context) {
	inv, err := h.invoiceService.Get(c.Request.Context(), session(c), c.Param("number"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, inv)
}

// PreviewInvoice handles GET /api/v1/invoices/:number/preview
func (h *Handlers) PreviewInvoice(c *gin.Context) {
	inv, err := h.invoiceService.Get(c.Request.Context(), session(c), c.Param("number"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, render.BuildPreview(inv))
}

// DownloadInvoicePDF handles GET /api/v1/invoices/:number/pdf
func (h *Handlers) DownloadInvoicePDF(c *gin.Context) {
	inv, err := h.invoiceService.Get(c.Request.Context(), session(c), c.Param("number"))
	if err != nil {
		handleError(c, err)
		return
	}

	pdf, err := render.PDF(inv)
	if err != nil {
		h.logger.Error("Failed to render invoice PDF", logging.Fields{
			"invoice_number": inv.InvoiceNumber,
			"error":          err.Error(),
		})
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", inv.FileName()))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// EmailInvoice handles POST /api/v1/invoices/:number/email
func (h *Handlers) EmailInvoice(c *gin.Context) {
	number := c.Param("number")
	if err := h.invoiceService.RequestEmail(c.Request.Context(), session(c), number); err != nil {
		handleError(c, err)
		return
	}

	status := "sent"
	if h.config.Features.EnableEvents {
		status = "queued"
	}
	c.JSON(http.StatusAccepted, gin.H{
		"status":         status,
		"invoice_number": number,
	})
}
