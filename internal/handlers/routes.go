package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API. requireSession guards every route that
// acts on behalf of a signed-in user.
func (h *Handlers) RegisterRoutes(r gin.IRouter, requireSession gin.HandlerFunc) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/live", h.Live)
	r.GET("/version", h.Version)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/google", h.SignInGoogle)
		v1.POST("/invoices/quote", h.QuoteInvoice)

		authed := v1.Group("", requireSession)
		authed.GET("/auth/session", h.GetSession)
		authed.POST("/auth/signout", h.SignOut)

		authed.POST("/business", h.RegisterBusiness)
		authed.GET("/business", h.GetBusiness)

		authed.POST("/invoices", h.CreateInvoice)
		authed.GET("/invoices", h.ListInvoices)
		authed.GET("/invoices/:number", h.GetInvoice)
		authed.GET("/invoices/:number/preview", h.PreviewInvoice)
		authed.GET("/invoices/:number/pdf", h.DownloadInvoicePDF)
		authed.POST("/invoices/:number/email", h.EmailInvoice)
	}
}
